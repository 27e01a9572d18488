package grovepi

// DigitalInput adapts a digital pin to hw.DigitalSensor.
type DigitalInput struct {
	Board *Board
	Pin   byte
}

func (d DigitalInput) Read() (bool, error) {
	return d.Board.DigitalRead(d.Pin)
}

// AnalogInput adapts an analog pin to hw.AnalogSensor.
type AnalogInput struct {
	Board *Board
	Pin   byte
}

func (a AnalogInput) Read() (int, error) {
	return a.Board.AnalogRead(a.Pin)
}

// DigitalOutput adapts a digital pin to hw.Actuator.
type DigitalOutput struct {
	Board *Board
	Pin   byte
}

func (d DigitalOutput) Set(on bool) error {
	return d.Board.DigitalWrite(d.Pin, on)
}
