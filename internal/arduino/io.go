package arduino

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"wordlewatch/internal/types"

	"github.com/tarm/serial"
)

// InitializePort открывает порт платы-индикатора
func InitializePort(name string, baud int) (*serial.Port, error) {
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 2 * time.Second,
	})
	return port, err
}

// SendResetToArduino гасит индикатор перед новым прогоном
func SendResetToArduino(port io.Writer) error {
	return write(port, "reset\n")
}

// SendRowToArduino сообщает новое состояние строки; строки нумеруются с 1
func SendRowToArduino(port io.Writer, row int, state types.RowState) error {
	return write(port, fmt.Sprintf("row:%d:%d:%d\n", row+1, state.FullMatch, state.PartialMatch))
}

// SendSolvedToArduino сообщает время решения в секундах
func SendSolvedToArduino(port io.Writer, timestamp float64) error {
	return write(port, fmt.Sprintf("solved:%.2f\n", timestamp))
}

func write(port io.Writer, message string) error {
	if _, err := port.Write([]byte(message)); err != nil {
		return fmt.Errorf("error writing to Arduino: %v", err)
	}
	return nil
}

// WaitForArduinoResponse читает до перевода строки и сверяет ответ
func WaitForArduinoResponse(port io.Reader, expectedResponse string) (string, error) {
	var response []byte
	buf := make([]byte, 128)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			response = append(response, buf[:n]...)
		}

		if i := bytes.IndexByte(response, '\n'); i >= 0 {
			line := string(bytes.TrimSpace(response[:i]))
			if line == expectedResponse {
				return line, nil
			}
			return "", fmt.Errorf("unexpected response: '%s'", line)
		}

		if err != nil {
			return "", fmt.Errorf("error reading from Arduino: %v", err)
		}
		// tarm/serial по таймауту возвращает 0 байт без ошибки
		if n == 0 {
			return "", fmt.Errorf("error reading from Arduino: timeout")
		}
	}
}
