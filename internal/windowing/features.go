package windowing

import (
	"github.com/upfall/sensor-backend-go/internal/models"
	"github.com/upfall/sensor-backend-go/internal/stats"
)

// MinWindowSamples is the smallest subset worth summarizing. Sparser
// windows are dropped without logging; this is routine, not exceptional.
const MinWindowSamples = 5

// channelNames in output-key order: six raw axes plus the two derived
// magnitude channels
var channelNames = []string{
	"accel_x", "accel_y", "accel_z",
	"gyro_x", "gyro_y", "gyro_z",
	"acc_mag", "gyro_mag",
}

// ExtractFeatures computes the statistical fingerprint of one window's
// samples: 8 statistics over 8 channels plus 3 accelerometer cross-axis
// correlations, 67 keys total. Returns nil when the subset holds fewer
// than MinWindowSamples samples; the caller discards such windows
// entirely.
func ExtractFeatures(subset []models.SensorSample) models.FeatureVector {
	if len(subset) < MinWindowSamples {
		return nil
	}

	channels := channelValues(subset)

	out := make(models.FeatureVector, len(channelNames)*8+3)
	for _, name := range channelNames {
		channelStats(name, channels[name], out)
	}

	// Cross-axis correlations (accel only, most informative)
	out["corr_accel_x_accel_y"] = stats.PearsonCorrelation(channels["accel_x"], channels["accel_y"])
	out["corr_accel_x_accel_z"] = stats.PearsonCorrelation(channels["accel_x"], channels["accel_z"])
	out["corr_accel_y_accel_z"] = stats.PearsonCorrelation(channels["accel_y"], channels["accel_z"])

	return out
}

// channelValues materializes the per-sample value series of every channel
func channelValues(subset []models.SensorSample) map[string][]float64 {
	n := len(subset)
	channels := make(map[string][]float64, len(channelNames))
	for _, name := range channelNames {
		channels[name] = make([]float64, n)
	}

	for i, s := range subset {
		channels["accel_x"][i] = s.AccelX
		channels["accel_y"][i] = s.AccelY
		channels["accel_z"][i] = s.AccelZ
		channels["gyro_x"][i] = s.GyroX
		channels["gyro_y"][i] = s.GyroY
		channels["gyro_z"][i] = s.GyroZ
		channels["acc_mag"][i] = s.AccelMagnitude()
		channels["gyro_mag"][i] = s.GyroMagnitude()
	}

	return channels
}

// channelStats writes the eight summary statistics of one channel into out
func channelStats(name string, values []float64, out models.FeatureVector) {
	out[name+"_mean"] = stats.Mean(values)
	out[name+"_std"] = stats.StdDev(values)
	out[name+"_min"] = stats.Min(values)
	out[name+"_max"] = stats.Max(values)
	out[name+"_p25"] = stats.Percentile(values, 25)
	out[name+"_p50"] = stats.Percentile(values, 50)
	out[name+"_p75"] = stats.Percentile(values, 75)
	out[name+"_energy"] = stats.Energy(values)
}
