package decode

// Outcome classifies what happened to one row on its way through the
// decoder. Rows are never rejected with a Go error: a bad packet must not be
// able to interrupt the frame loop, so failure is data, not control flow.
// Callers branch on the outcome to count, log, or ignore.
type Outcome int

const (
	// OutcomeDecoded means the payload parsed and a handler produced channels.
	OutcomeDecoded Outcome = iota
	// OutcomeNumericFallback means the payload was not JSON but parsed as a
	// bare float, producing a single value channel.
	OutcomeNumericFallback
	// OutcomeZeroFallback means the payload was neither JSON nor a float; a
	// zero-valued value channel is emitted so the device still registers.
	OutcomeZeroFallback
	// OutcomeUnsupportedShape means the payload decoded to a JSON scalar the
	// catalogue has no use for (string, bool, null); treated like
	// OutcomeZeroFallback.
	OutcomeUnsupportedShape
	// OutcomeBadBatch means the packet carried a samples field that was not
	// an array. No channels are produced.
	OutcomeBadBatch
	// OutcomeShortRow means the row had fewer than the required fields and
	// was dropped.
	OutcomeShortRow
	// OutcomeEmptyDevice means the device id normalised to the empty string
	// and the row was dropped.
	OutcomeEmptyDevice
)

var outcomeNames = map[Outcome]string{
	OutcomeDecoded:          "decoded",
	OutcomeNumericFallback:  "numeric_fallback",
	OutcomeZeroFallback:     "zero_fallback",
	OutcomeUnsupportedShape: "unsupported_shape",
	OutcomeBadBatch:         "bad_batch",
	OutcomeShortRow:         "short_row",
	OutcomeEmptyDevice:      "empty_device",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Result is the typed outcome of decoding one row. Channels is nil only when
// the row was dropped (short row, empty device) or the batch was malformed.
type Result struct {
	// Device is the normalised device id, empty when the row was dropped
	// before a device could be identified.
	Device string
	// Kind is the recognised packet shape.
	Kind Kind
	// Outcome classifies how the channels were obtained.
	Outcome Outcome
	// Channels holds the decoded suffix-to-value pairs for this row.
	Channels *ChannelMap
	// TruncatedNodes counts generic-flatten nodes dropped by the depth guard.
	TruncatedNodes int
	// SkippedSamples counts non-object entries skipped inside a batch.
	SkippedSamples int
}

// Dropped reports whether the row contributed nothing to device state.
func (r Result) Dropped() bool {
	return r.Channels.Len() == 0
}
