package toystore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// RecordSize is the encoded size of a Record.
const RecordSize = 8

// ErrCorrupt is returned when persisted bytes are not a valid record.
var ErrCorrupt = errors.New("toystore: corrupt record")

// Record is the battery-backed state of the time-of-year clock: the host
// wall-clock instant at which the TODR register was logically zero.
//
// The on-disk layout is two little-endian uint32 values, seconds then
// milliseconds, so a record file can move between hosts unchanged.
type Record struct {
	EpochSeconds uint32 `json:"epoch_seconds"`
	EpochMillis  uint32 `json:"epoch_milliseconds"`
}

// RecordAt returns the record for epoch t.
func RecordAt(t time.Time) Record {
	return Record{
		EpochSeconds: uint32(t.Unix()),
		EpochMillis:  uint32(t.Nanosecond() / int(time.Millisecond)),
	}
}

// IsZero reports whether the epoch was never set.
func (r Record) IsZero() bool {
	return r.EpochSeconds == 0 && r.EpochMillis == 0
}

// Time returns the epoch as a time.Time.
func (r Record) Time() time.Time {
	return time.Unix(int64(r.EpochSeconds), int64(r.EpochMillis)*int64(time.Millisecond))
}

// MarshalBinary encodes r in its fixed little-endian layout.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], r.EpochSeconds)
	binary.LittleEndian.PutUint32(buf[4:8], r.EpochMillis)
	return buf, nil
}

// UnmarshalBinary decodes data. An empty slice decodes to the zero record,
// which is what a freshly created backing file holds.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) == 0 {
		*r = Record{}
		return nil
	}
	if len(data) != RecordSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrCorrupt, len(data), RecordSize)
	}
	r.EpochSeconds = binary.LittleEndian.Uint32(data[0:4])
	r.EpochMillis = binary.LittleEndian.Uint32(data[4:8])
	if r.EpochMillis >= 1000 {
		return fmt.Errorf("%w: milliseconds %d out of range", ErrCorrupt, r.EpochMillis)
	}
	return nil
}

func (r Record) String() string {
	if r.IsZero() {
		return "unset"
	}
	return r.Time().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
