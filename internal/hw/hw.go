// Package hw defines the narrow capabilities the sensor loop needs from the
// board, so the loop can run against fakes.
package hw

// DigitalSensor reads a binary input such as a PIR motion sensor.
type DigitalSensor interface {
	Read() (bool, error)
}

// AnalogSensor reads an analog input such as a joystick axis.
type AnalogSensor interface {
	Read() (int, error)
}

// Actuator drives a binary output such as a buzzer.
type Actuator interface {
	Set(on bool) error
}
