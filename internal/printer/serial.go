package printer

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"github.com/tarm/serial"
)

// SerialConfig names the controller's serial port. Reads block; the host's
// reader loop ends when the port is closed.
type SerialConfig struct {
	Device string
	Baud   int
}

type serialTransport struct {
	port   *serial.Port
	reader *bufio.Reader
	wmu    sync.Mutex
}

// OpenSerial opens the controller port.
func OpenSerial(cfg SerialConfig) (Transport, error) {
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	port, err := serial.OpenPort(&serial.Config{
		Name: cfg.Device,
		Baud: cfg.Baud,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	return &serialTransport{port: port, reader: bufio.NewReader(port)}, nil
}

func (s *serialTransport) WriteLine(line string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	_, err := s.port.Write([]byte(line + "\n"))
	return err
}

func (s *serialTransport) ReadLine() (string, error) {
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *serialTransport) Close() error {
	return s.port.Close()
}
