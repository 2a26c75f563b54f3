package iface

import (
	"encoding/binary"
	"math"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUDPPublisherFramesAddressAndPayload(t *testing.T) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	require.NoError(t, err)
	defer listener.Close()

	pub, err := NewUDPPublisher(listener.LocalAddr().String())
	require.NoError(t, err)
	defer pub.Close()

	payload := []float32{1.5, -2.25, 0}
	const centerHz = uint32(96900000)
	require.NoError(t, pub.Publish(centerHz, payload))

	buf := make([]byte, 1024)
	require.NoError(t, listener.SetReadDeadline(time.Now().Add(time.Second)))
	n, _, err := listener.ReadFromUDP(buf)
	require.NoError(t, err)
	require.Equal(t, 4+4*len(payload), n)

	require.Equal(t, centerHz, binary.LittleEndian.Uint32(buf[0:4]))
	for i, want := range payload {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[4+4*i : 8+4*i]))
		require.Equal(t, want, got)
	}
}
