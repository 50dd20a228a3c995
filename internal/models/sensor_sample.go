package models

import (
	"math"
	"time"
)

// SensorSample represents one raw wearable reading: tri-axial accelerometer
// and gyroscope values tagged with the volunteer and the activity performed
type SensorSample struct {
	ID        int64     `json:"id" db:"id"`
	SubjectID int       `json:"subjectId" db:"subject_id"`
	Activity  string    `json:"activity" db:"activity"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"` // zero value = unparseable source timestamp, stored as NULL
	AccelX    float64   `json:"accelX" db:"accel_x"`
	AccelY    float64   `json:"accelY" db:"accel_y"`
	AccelZ    float64   `json:"accelZ" db:"accel_z"`
	GyroX     float64   `json:"gyroX" db:"gyro_x"`
	GyroY     float64   `json:"gyroY" db:"gyro_y"`
	GyroZ     float64   `json:"gyroZ" db:"gyro_z"`
}

// AccelMagnitude returns the Euclidean norm of the accelerometer axes
func (s SensorSample) AccelMagnitude() float64 {
	return math.Sqrt(s.AccelX*s.AccelX + s.AccelY*s.AccelY + s.AccelZ*s.AccelZ)
}

// GyroMagnitude returns the Euclidean norm of the gyroscope axes
func (s SensorSample) GyroMagnitude() float64 {
	return math.Sqrt(s.GyroX*s.GyroX + s.GyroY*s.GyroY + s.GyroZ*s.GyroZ)
}
