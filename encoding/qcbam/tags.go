// Copyright 2024 The Seqqc Authors.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package qcbam

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/biogo/hts/sam"
	"github.com/nucleomics/seqqc/record"
)

// Known Nanopore-carrying BAM tags (spec §4.1.3). We reuse sam.Tag purely
// as a 2-byte vocabulary -- the same type the teacher's bam.Record.AuxFields
// indexes by -- without pulling in the rest of the sam.Aux machinery, since
// all we need here is "which three tags do we care about".
var (
	tagChannel  = sam.Tag{'c', 'h'}
	tagDuration = sam.Tag{'d', 'u'}
	tagStart    = sam.Tag{'s', 't'}
)

// auxJump gives, for each BAM aux value-type byte, the fixed payload size
// in bytes, or -1 for variable-length types ('Z', 'H', 'B') that need
// special handling. Mirrors the teacher's bam.jumps table.
var auxJump = [256]int{
	'A': 1,
	'c': 1, 'C': 1,
	's': 2, 'S': 2,
	'i': 4, 'I': 4,
	'f': 4,
	'Z': -1,
	'H': -1,
	'B': -1,
}

// parseTags walks a BAM tag block, filling in meta.Channel, meta.Duration
// and meta.StartTime from the ch/du/st tags, and length-skipping every
// other tag whose value type has a known length. A value-type byte outside
// the BAM set is rejected with a KindBadFormat error. The 'B' array type
// carries a u32 element count after the sub-type byte.
func parseTags(tags []byte, meta *record.RecordMeta) error {
	for i := 0; i+2 < len(tags); {
		tag := sam.Tag{tags[i], tags[i+1]}
		valType := tags[i+2]

		switch tag {
		case tagChannel:
			// ch:i -- a signed 32-bit channel id; BAM also permits the
			// narrower integer encodings ('c','C','s','S'), so decode
			// whichever width is present.
			v, n, err := decodeSignedInt(tags[i+3:], valType)
			if err != nil {
				return err
			}
			meta.Channel = int32(v)
			i += 3 + n
			continue
		case tagDuration:
			if valType != 'f' || len(tags) < i+7 {
				return record.E(record.KindBadFormat, "malformed du tag")
			}
			bits := binary.LittleEndian.Uint32(tags[i+3:])
			meta.Duration = math.Float32frombits(bits)
			i += 3 + 4
			continue
		case tagStart:
			if valType != 'Z' {
				return record.E(record.KindBadFormat, "malformed st tag")
			}
			s, n, err := readCString(tags[i+3:])
			if err != nil {
				return err
			}
			if t, ok := parseISO8601(s); ok {
				meta.StartTime = t
			}
			i += 3 + n
			continue
		}

		j := auxJump[valType]
		switch {
		case j > 0:
			i += 3 + j
		case valType == 'Z' || valType == 'H':
			_, n, err := readCString(tags[i+3:])
			if err != nil {
				return err
			}
			i += 3 + n
		case valType == 'B':
			if len(tags) < i+8 {
				return record.E(record.KindBadFormat, "truncated B-type tag")
			}
			subType := tags[i+3]
			count := binary.LittleEndian.Uint32(tags[i+4:])
			elemSize := auxJump[subType]
			if elemSize <= 0 {
				return record.E(record.KindBadFormat, "unknown B-type sub-type")
			}
			i += 3 + 1 + 4 + int(count)*elemSize
		default:
			return record.E(record.KindBadFormat, "unknown tag type")
		}
	}
	return nil
}

func decodeSignedInt(b []byte, valType byte) (int64, int, error) {
	switch valType {
	case 'c':
		if len(b) < 1 {
			return 0, 0, record.E(record.KindBadFormat, "truncated c tag")
		}
		return int64(int8(b[0])), 1, nil
	case 'C':
		if len(b) < 1 {
			return 0, 0, record.E(record.KindBadFormat, "truncated C tag")
		}
		return int64(b[0]), 1, nil
	case 's':
		if len(b) < 2 {
			return 0, 0, record.E(record.KindBadFormat, "truncated s tag")
		}
		return int64(int16(binary.LittleEndian.Uint16(b))), 2, nil
	case 'S':
		if len(b) < 2 {
			return 0, 0, record.E(record.KindBadFormat, "truncated S tag")
		}
		return int64(binary.LittleEndian.Uint16(b)), 2, nil
	case 'i':
		if len(b) < 4 {
			return 0, 0, record.E(record.KindBadFormat, "truncated i tag")
		}
		return int64(int32(binary.LittleEndian.Uint32(b))), 4, nil
	case 'I':
		if len(b) < 4 {
			return 0, 0, record.E(record.KindBadFormat, "truncated I tag")
		}
		return int64(binary.LittleEndian.Uint32(b)), 4, nil
	default:
		return 0, 0, record.E(record.KindBadFormat, "unexpected ch tag type")
	}
}

func readCString(b []byte) (string, int, error) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), i + 1, nil
		}
	}
	return "", 0, record.E(record.KindBadFormat, "unterminated string tag")
}

// iso8601Layouts covers the Nanopore start_time tag format
// "YYYY-MM-DDTHH:MM:SS[.fractional][Z|+-HH:MM]": the zone bracket is
// optional, and an unzoned timestamp is interpreted as UTC, time.Parse's
// default when the layout itself carries no zone specifier.
var iso8601Layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parseISO8601 parses the Nanopore start_time tag into a Unix epoch,
// matching the FASTQ-header parser in metrics/nanostats so both input
// paths agree. A pre-1970 timestamp is rejected (spec §4.7.1: "pre-1970
// returns failure"), not returned as a negative epoch.
func parseISO8601(s string) (int64, bool) {
	for _, layout := range iso8601Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			epoch := t.Unix()
			if epoch < 0 {
				return 0, false
			}
			return epoch, true
		}
	}
	return 0, false
}
