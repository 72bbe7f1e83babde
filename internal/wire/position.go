// Package wire implements the length-delimited VehiclePosition encoding
// published to raw-telemetry. Field numbers are stable and match what the
// build-time schema codegen would produce; here they are written and read
// by hand against protobuf's wire encoding rather than generated code.
package wire

import (
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/opentraffic/citysim/internal/errs"
)

const (
	fieldVehicleID = 1
	fieldLatitude  = 2
	fieldLongitude = 3
	fieldSpeed     = 4
	fieldTimestamp = 5
)

// VehiclePosition is one telemetry record for a single vehicle at a point
// in time.
type VehiclePosition struct {
	VehicleID string
	Latitude  float64
	Longitude float64
	Speed     float64
	Timestamp int64
}

// Encode serializes p using protobuf's wire format: a string field, three
// double fields, and a varint field, each tagged with its field number.
func Encode(p VehiclePosition) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldVehicleID, protowire.BytesType)
	b = protowire.AppendString(b, p.VehicleID)
	b = protowire.AppendTag(b, fieldLatitude, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, encodeDouble(p.Latitude))
	b = protowire.AppendTag(b, fieldLongitude, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, encodeDouble(p.Longitude))
	b = protowire.AppendTag(b, fieldSpeed, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, encodeDouble(p.Speed))
	b = protowire.AppendTag(b, fieldTimestamp, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(p.Timestamp))
	return b
}

// Decode parses a buffer produced by Encode. Unknown fields are skipped for
// forward compatibility; a truncated or malformed buffer is a ProtocolError.
func Decode(buf []byte) (VehiclePosition, error) {
	var p VehiclePosition
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return p, errs.Protocol("consume tag", protowire.ParseError(n))
		}
		buf = buf[n:]

		switch num {
		case fieldVehicleID:
			s, n := protowire.ConsumeString(buf)
			if n < 0 {
				return p, errs.Protocol("consume vehicle_id", protowire.ParseError(n))
			}
			p.VehicleID = s
			buf = buf[n:]
		case fieldLatitude:
			v, n := protowire.ConsumeFixed64(buf)
			if n < 0 {
				return p, errs.Protocol("consume latitude", protowire.ParseError(n))
			}
			p.Latitude = decodeDouble(v)
			buf = buf[n:]
		case fieldLongitude:
			v, n := protowire.ConsumeFixed64(buf)
			if n < 0 {
				return p, errs.Protocol("consume longitude", protowire.ParseError(n))
			}
			p.Longitude = decodeDouble(v)
			buf = buf[n:]
		case fieldSpeed:
			v, n := protowire.ConsumeFixed64(buf)
			if n < 0 {
				return p, errs.Protocol("consume speed", protowire.ParseError(n))
			}
			p.Speed = decodeDouble(v)
			buf = buf[n:]
		case fieldTimestamp:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return p, errs.Protocol("consume timestamp", protowire.ParseError(n))
			}
			p.Timestamp = int64(v)
			buf = buf[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, buf)
			if n < 0 {
				return p, errs.Protocol("skip unknown field", protowire.ParseError(n))
			}
			buf = buf[n:]
		}
	}
	return p, nil
}
