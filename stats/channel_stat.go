package stats

// ChannelStat 单个缓冲 channel 的水位
type ChannelStat struct {
	Name  string  `json:"name"`
	Len   int     `json:"len"`
	Cap   int     `json:"cap"`
	Usage float64 `json:"usage"` // len/cap
}

func NewChannelStat(name string, length, capacity int) ChannelStat {
	usage := 0.0
	if capacity > 0 {
		usage = float64(length) / float64(capacity)
	}
	return ChannelStat{Name: name, Len: length, Cap: capacity, Usage: usage}
}
