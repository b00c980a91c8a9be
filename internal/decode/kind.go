package decode

// Kind is the closed set of packet shapes the decoder recognises. Dispatch
// runs over this enum rather than raw type strings so every packet lands in
// exactly one handler, with KindGeneric as the catch-all.
type Kind int

const (
	// KindNumber is a bare JSON number payload.
	KindNumber Kind = iota
	// KindBatch is an object carrying a samples array of packets.
	KindBatch
	// KindHeartRate is a heart_rate packet (bpm plus optional rr_intervals).
	KindHeartRate
	// KindEEG is an eeg packet with band values under data.
	KindEEG
	// KindPPG is a ppg packet with sensor values under data.
	KindPPG
	// KindIMU is an imu packet with accel and gyro objects under data.
	KindIMU
	// KindAccel is an accel or accelerometer packet.
	KindAccel
	// KindGyro is a gyro packet.
	KindGyro
	// KindPhoneSensors is a flat phone sensor bundle.
	KindPhoneSensors
	// KindGeneric is any other object or array, flattened generically.
	KindGeneric
	// KindInvalid is a payload that produced no recognisable packet.
	KindInvalid
)

var kindNames = map[Kind]string{
	KindNumber:       "number",
	KindBatch:        "batch",
	KindHeartRate:    "heart_rate",
	KindEEG:          "eeg",
	KindPPG:          "ppg",
	KindIMU:          "imu",
	KindAccel:        "accel",
	KindGyro:         "gyro",
	KindPhoneSensors: "phone_sensors",
	KindGeneric:      "generic",
	KindInvalid:      "invalid",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// kindForType maps a packet's type field to a Kind. Unknown or missing types
// dispatch to the generic flattener.
func kindForType(typ string) Kind {
	switch typ {
	case "heart_rate":
		return KindHeartRate
	case "eeg":
		return KindEEG
	case "ppg":
		return KindPPG
	case "imu":
		return KindIMU
	case "accel", "accelerometer":
		return KindAccel
	case "gyro":
		return KindGyro
	case "phone_sensors":
		return KindPhoneSensors
	default:
		return KindGeneric
	}
}
