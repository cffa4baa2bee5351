package arduino

import (
	"fmt"
	"io"
)

// ProcessAndWait отправляет команду и ждет подтверждения "received"
func ProcessAndWait(
	send func(io.Writer) error,
	waitForArduinoResponse func(io.Reader, string) (string, error),
	port io.ReadWriter) error {

	if err := send(port); err != nil {
		return err
	}

	if _, err := waitForArduinoResponse(port, "received"); err != nil {
		return fmt.Errorf("error waiting for Arduino response: %v", err)
	}
	return nil
}
