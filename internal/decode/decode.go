// Package decode turns raw device payload strings into flat channel maps.
//
// Payloads are JSON-encoded sensor packets from wearable and mobile devices
// (EEG/PPG/IMU headbands, heart-rate monitors, phone sensor bridges). The
// decoder recognises a fixed catalogue of packet shapes keyed on the type
// field, plus a generic flattener for everything else, and reports every row
// as a typed Result rather than an error: the frame loop must never stall on
// a bad packet.
package decode

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"sensorchop.dev/internal/rowtable"
)

// valueChannel is the single channel name used for bare numeric payloads and
// for fallback values when a payload cannot be decoded at all.
const valueChannel = "value"

// DecodeRow validates and decodes one row. Short rows and rows whose device
// id normalises to the empty string are dropped with a classifying outcome.
func DecodeRow(row rowtable.Row) Result {
	if !row.Valid() {
		return Result{Kind: KindInvalid, Outcome: OutcomeShortRow}
	}
	device := rowtable.NormalizeDeviceID(row.Device())
	if device == "" {
		return Result{Kind: KindInvalid, Outcome: OutcomeEmptyDevice}
	}
	return DecodePayload(device, row.Payload())
}

// DecodePayload decodes one payload string for an already-normalised device
// id. The payload may be wrapped in one pair of double quotes; the wrapper
// is stripped before parsing.
func DecodePayload(device, payload string) Result {
	raw := stripQuotes(payload)

	if !gjson.Valid(raw) {
		return fallbackResult(device, raw)
	}

	result := decodeValue(gjson.Parse(raw))
	result.Device = device
	return result
}

// stripQuotes removes a single layer of enclosing double quotes. Quotes are
// only stripped as a pair, so a payload that merely starts or ends with one
// is left alone.
func stripQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// fallbackResult handles payloads that are not valid JSON: a parseable float
// becomes the value channel, anything else a zero-valued value channel.
func fallbackResult(device, raw string) Result {
	channels := NewChannelMap()
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		channels.Set(valueChannel, f)
		return Result{Device: device, Kind: KindNumber, Outcome: OutcomeNumericFallback, Channels: channels}
	}
	channels.Set(valueChannel, 0)
	return Result{Device: device, Kind: KindInvalid, Outcome: OutcomeZeroFallback, Channels: channels}
}

// decodeValue classifies a parsed JSON value and runs the matching handler.
func decodeValue(value gjson.Result) Result {
	switch {
	case value.Type == gjson.Number:
		channels := NewChannelMap()
		channels.Set(valueChannel, value.Float())
		return Result{Kind: KindNumber, Outcome: OutcomeDecoded, Channels: channels}

	case value.IsObject():
		if samples := value.Get("samples"); samples.Exists() {
			return decodeBatch(samples)
		}
		return decodePacket(value)

	case value.IsArray():
		channels, truncated := Flatten(value, "")
		return Result{Kind: KindGeneric, Outcome: OutcomeDecoded, Channels: channels, TruncatedNodes: truncated}

	default:
		// Strings, booleans and null have no numeric interpretation.
		channels := NewChannelMap()
		channels.Set(valueChannel, 0)
		return Result{Kind: KindInvalid, Outcome: OutcomeUnsupportedShape, Channels: channels}
	}
}

// decodeBatch processes a samples array: each element is classified
// independently and the results merged in array order, so later samples win
// key collisions. Non-object, non-numeric elements are skipped and counted.
func decodeBatch(samples gjson.Result) Result {
	if !samples.IsArray() {
		return Result{Kind: KindBatch, Outcome: OutcomeBadBatch}
	}

	merged := NewChannelMap()
	truncated := 0
	skipped := 0
	samples.ForEach(func(_, sample gjson.Result) bool {
		if sample.Type != gjson.Number && !sample.IsObject() && !sample.IsArray() {
			skipped++
			return true
		}
		r := decodeValue(sample)
		merged.Merge(r.Channels)
		truncated += r.TruncatedNodes
		skipped += r.SkippedSamples
		return true
	})

	return Result{
		Kind:           KindBatch,
		Outcome:        OutcomeDecoded,
		Channels:       merged,
		TruncatedNodes: truncated,
		SkippedSamples: skipped,
	}
}

// decodePacket dispatches an object packet on its type field.
func decodePacket(packet gjson.Result) Result {
	kind := kindForType(packet.Get("type").String())
	data := packet.Get("data")

	channels := NewChannelMap()
	truncated := 0

	switch kind {
	case KindHeartRate:
		channels.Set("bpm", packet.Get("bpm").Float())
		if rr := packet.Get("rr_intervals"); rr.IsArray() {
			index := 0
			rr.ForEach(func(_, v gjson.Result) bool {
				if index >= 4 {
					return false
				}
				channels.Set("rr_"+strconv.Itoa(index), v.Float())
				index++
				return true
			})
		}

	case KindEEG:
		dataChannels(channels, data, "eeg")

	case KindPPG:
		dataChannels(channels, data, "ppg")

	case KindIMU:
		if accel := data.Get("accel"); accel.IsObject() {
			dataChannels(channels, accel, "accel")
		}
		if gyro := data.Get("gyro"); gyro.IsObject() {
			dataChannels(channels, gyro, "gyro")
		}

	case KindAccel:
		axisChannels(channels, packet, data, "accel")

	case KindGyro:
		axisChannels(channels, packet, data, "gyro")

	case KindPhoneSensors:
		phoneSensorChannels(channels, packet)

	default:
		channels, truncated = Flatten(packet, "")
	}

	return Result{Kind: kind, Outcome: OutcomeDecoded, Channels: channels, TruncatedNodes: truncated}
}

// dataChannels emits one {prefix}_{key} channel per numeric key of a data
// object, in document order.
func dataChannels(channels *ChannelMap, data gjson.Result, prefix string) {
	if !data.IsObject() {
		return
	}
	data.ForEach(func(key, value gjson.Result) bool {
		if value.Type == gjson.Number {
			channels.Set(prefix+"_"+key.String(), value.Float())
		}
		return true
	})
}

// axisChannels handles accel and gyro packets. Newer bridges nest the axes
// under data; older ones put them at the packet's top level, so when data is
// absent the top-level numeric fields are used instead (type excluded).
func axisChannels(channels *ChannelMap, packet, data gjson.Result, prefix string) {
	if data.IsObject() {
		dataChannels(channels, data, prefix)
		return
	}
	packet.ForEach(func(key, value gjson.Result) bool {
		if key.String() == "type" {
			return true
		}
		if value.Type == gjson.Number {
			channels.Set(prefix+"_"+key.String(), value.Float())
		}
		return true
	})
}

// phoneSensorGroups lists the fixed phone sensor field catalogue. Each group
// is emitted only when its first (gate) field is present in the packet; the
// remaining fields of a gated-in group default to zero.
var phoneSensorGroups = [][]string{
	{"accel_x", "accel_y", "accel_z"},
	{"gyro_x", "gyro_y", "gyro_z"},
	{"mag_x", "mag_y", "mag_z"},
	{"pitch", "roll", "yaw"},
	{"pressure", "altitude"},
	{"latitude", "longitude", "speed", "heading"},
	{"audio_level"},
	{"gravity_x", "gravity_y", "gravity_z"},
	{"user_accel_x", "user_accel_y", "user_accel_z"},
	{"quat_x", "quat_y", "quat_z", "quat_w"},
}

// phoneSensorChannels extracts the flat, presence-gated phone sensor bundle.
func phoneSensorChannels(channels *ChannelMap, packet gjson.Result) {
	for _, group := range phoneSensorGroups {
		if !packet.Get(group[0]).Exists() {
			continue
		}
		for _, field := range group {
			channels.Set(field, packet.Get(field).Float())
		}
	}
}
