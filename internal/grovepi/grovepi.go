// Package grovepi drives a GrovePi sensor board over I2C.
package grovepi

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// DefaultAddress is the firmware's I2C address.
const DefaultAddress uint16 = 0x04

// Firmware commands. Every command is written as
// [register, cmd, pin, arg1, arg2].
const (
	register = 0x01

	cmdDigitalRead  = 1
	cmdDigitalWrite = 2
	cmdAnalogRead   = 3
	cmdPinMode      = 5
)

// defaultSettle is how long the firmware needs between a read command and
// the reply being available.
const defaultSettle = 10 * time.Millisecond

// Mode is a pin direction.
type Mode byte

const (
	Input  Mode = 0
	Output Mode = 1
)

// Board is a GrovePi reachable on an I2C bus.
type Board struct {
	mu     sync.Mutex
	dev    *i2c.Dev
	settle time.Duration
	closer interface{ Close() error }
}

// New wraps an already opened bus.
func New(bus i2c.Bus, addr uint16) *Board {
	return &Board{
		dev:    &i2c.Dev{Bus: bus, Addr: addr},
		settle: defaultSettle,
	}
}

// Open initializes the host drivers and opens the named I2C bus. An empty
// name picks the first bus available.
func Open(busName string, addr uint16) (*Board, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize host drivers: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open i2c bus %q: %w", busName, err)
	}
	b := New(bus, addr)
	b.closer = bus
	return b, nil
}

// Close releases the bus if the board opened it.
func (b *Board) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// PinMode sets a digital pin's direction.
func (b *Board) PinMode(pin byte, mode Mode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.command(cmdPinMode, pin, byte(mode)); err != nil {
		return fmt.Errorf("pinMode(%d): %w", pin, err)
	}
	return nil
}

// DigitalRead returns the level of a digital pin.
func (b *Board) DigitalRead(pin byte) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.query(cmdDigitalRead, pin, 1)
	if err != nil {
		return false, fmt.Errorf("digitalRead(%d): %w", pin, err)
	}
	return r[0] == 1, nil
}

// DigitalWrite drives a digital pin high or low.
func (b *Board) DigitalWrite(pin byte, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var v byte
	if on {
		v = 1
	}
	if err := b.command(cmdDigitalWrite, pin, v); err != nil {
		return fmt.Errorf("digitalWrite(%d): %w", pin, err)
	}
	return nil
}

// AnalogRead returns the 10-bit reading of an analog pin.
func (b *Board) AnalogRead(pin byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.query(cmdAnalogRead, pin, 3)
	if err != nil {
		return 0, fmt.Errorf("analogRead(%d): %w", pin, err)
	}
	return int(r[1])<<8 | int(r[2]), nil
}

func (b *Board) command(cmd, pin, arg byte) error {
	return b.dev.Tx([]byte{register, cmd, pin, arg, 0}, nil)
}

func (b *Board) query(cmd, pin byte, n int) ([]byte, error) {
	if err := b.command(cmd, pin, 0); err != nil {
		return nil, err
	}
	time.Sleep(b.settle)
	r := make([]byte, n)
	if err := b.dev.Tx(nil, r); err != nil {
		return nil, err
	}
	return r, nil
}
