package tuner

// Channel describes one registered output channel: a narrow frequency
// span to be extracted from the wide capture band (spec §4.12).
type Channel struct {
	Index     int
	Frequency float64
	Bandwidth float64
	Lower     float64
	Upper     float64
}
