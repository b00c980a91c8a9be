// Command gen-rows generates synthetic fixture row files for dev-mode
// replay and bench tests: a uuid-stamped session header followed by rows of
// eeg, ppg, imu, heart-rate and phone-sensor packets.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	output  = flag.String("o", "fixtures.txt", "output path")
	rows    = flag.Int("n", 1000, "number of rows")
	devices = flag.Int("devices", 2, "number of headband devices")
	seed    = flag.Int64("seed", 0, "random seed (0 selects current time)")
)

func main() {
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("failed to create output file: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	defer w.Flush()

	session := uuid.New()
	fmt.Fprintf(w, "# session %s seed %d\n", session, *seed)

	for i := 0; i < *rows; i++ {
		device := fmt.Sprintf("muse_%02d", i%*devices)
		phase := float64(i) / 10

		var payload string
		switch i % 5 {
		case 0:
			payload = fmt.Sprintf(
				`{"type":"eeg","data":{"tp9":%.3f,"af7":%.3f,"af8":%.3f,"tp10":%.3f}}`,
				noisy(rng, math.Sin(phase)), noisy(rng, math.Cos(phase)),
				noisy(rng, math.Sin(phase/2)), noisy(rng, math.Cos(phase/2)))
		case 1:
			payload = fmt.Sprintf(
				`{"type":"ppg","data":{"ir":%.1f,"red":%.1f}}`,
				50000+rng.Float64()*1000, 48000+rng.Float64()*1000)
		case 2:
			payload = fmt.Sprintf(
				`{"type":"imu","data":{"accel":{"x":%.3f,"y":%.3f,"z":%.3f},"gyro":{"x":%.3f,"y":%.3f,"z":%.3f}}}`,
				noisy(rng, 0), noisy(rng, 0), noisy(rng, 9.81),
				noisy(rng, 0), noisy(rng, 0), noisy(rng, 0))
		case 3:
			device = "polar_h10"
			payload = fmt.Sprintf(
				`{"type":"heart_rate","bpm":%d,"rr_intervals":[%d,%d,%d,%d]}`,
				60+rng.Intn(40), 800+rng.Intn(200), 800+rng.Intn(200),
				800+rng.Intn(200), 800+rng.Intn(200))
		case 4:
			device = "phone"
			payload = fmt.Sprintf(
				`{"type":"phone_sensors","accel_x":%.3f,"accel_y":%.3f,"accel_z":%.3f,"pitch":%.3f,"roll":%.3f,"yaw":%.3f,"audio_level":%.1f}`,
				noisy(rng, 0), noisy(rng, 0), noisy(rng, 1),
				noisy(rng, 0), noisy(rng, 0), noisy(rng, 0),
				-40+rng.Float64()*30)
		}

		line := strings.Join([]string{"#osc", "/sensors", device, payload}, "\t")
		fmt.Fprintln(w, line)
	}

	log.Printf("wrote %d rows for session %s to %s", *rows, session, *output)
}

// noisy adds small gaussian noise around a base value.
func noisy(rng *rand.Rand, base float64) float64 {
	return base + rng.NormFloat64()*0.05
}
