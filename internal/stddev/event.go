package stddev

// Device names used in events.
const (
	DeviceClock  = "clk"
	DeviceInput  = "tti"
	DeviceOutput = "tto"
	DeviceTODR   = "todr"
)

// Event kinds.
const (
	KindRecalibrate = "recalibrate" // Value: new tick delay
	KindReceive     = "receive"     // Value: receiver buffer
	KindBreak       = "break"
	KindTransmit    = "transmit" // Value: character emitted
	KindSuppress    = "suppress" // Value: character dropped by 7p
	KindStall       = "stall"
	KindReset       = "reset" // Value: ResetMode
	KindWrite       = "write" // Value: TODR value written by the guest
)

// Event describes one observable device action.
type Event struct {
	Device string `json:"device"`
	Kind   string `json:"kind"`
	Value  uint32 `json:"value"`
}

type emitter struct {
	fn func(Event)
}

func (e *emitter) emit(device, kind string, v uint32) {
	if e != nil && e.fn != nil {
		e.fn(Event{Device: device, Kind: kind, Value: v})
	}
}
