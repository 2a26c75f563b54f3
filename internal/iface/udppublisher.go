package iface

import (
	"encoding/binary"
	"math"
	"net"
)

// UDPPublisher is a Publisher built on net.UDPConn broadcast/multicast
// sockets. No pub/sub messaging library appears anywhere in the example
// pack (none of its go.mod files pull in a ZeroMQ, NATS, or nanomsg
// binding), so this one seam is built directly on the standard library
// net package rather than an invented dependency; every other external
// seam in this package stays an interface cmd/ wires a pack-grounded
// implementation into.
type UDPPublisher struct {
	conn *net.UDPConn
}

// NewUDPPublisher dials a UDP socket to addr (host:port), typically a
// broadcast or multicast address local subscribers listen on.
func NewUDPPublisher(addr string) (*UDPPublisher, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &UDPPublisher{conn: conn}, nil
}

// Publish implements Publisher: a 4-byte little-endian address prefix
// (the channel's center frequency in Hz) followed by the raw float32LE
// payload, per spec §6.
func (p *UDPPublisher) Publish(centerHz uint32, payload []float32) error {
	frame := make([]byte, 4+4*len(payload))
	binary.LittleEndian.PutUint32(frame[0:4], centerHz)
	for i, v := range payload {
		binary.LittleEndian.PutUint32(frame[4+4*i:8+4*i], math.Float32bits(v))
	}
	_, err := p.conn.Write(frame)
	return err
}

// Close implements Publisher.
func (p *UDPPublisher) Close() error {
	return p.conn.Close()
}
