package arduino

import (
	"io"

	"wordlewatch/internal/logger"
	"wordlewatch/internal/types"
)

// Notifier дублирует ход прогона на плату-индикатор
type Notifier struct {
	port   io.ReadWriter
	logger *logger.LoggerManager
	wait   func(io.Reader, string) (string, error)
}

// NewNotifier создает новый экземпляр Notifier
func NewNotifier(port io.ReadWriter, loggerManager *logger.LoggerManager) *Notifier {
	return &Notifier{
		port:   port,
		logger: loggerManager,
		wait:   WaitForArduinoResponse,
	}
}

// Reset гасит индикатор
func (n *Notifier) Reset() error {
	return ProcessAndWait(SendResetToArduino, n.wait, n.port)
}

func (n *Notifier) OnChange(ev types.ChangeEvent) error {
	return ProcessAndWait(func(w io.Writer) error {
		return SendRowToArduino(w, ev.Row, ev.New)
	}, n.wait, n.port)
}

func (n *Notifier) OnSolved(res types.SolveResult, _ *types.Frame) error {
	err := ProcessAndWait(func(w io.Writer) error {
		return SendSolvedToArduino(w, res.Timestamp)
	}, n.wait, n.port)
	if err == nil {
		n.logger.Info("📟 Индикатор: решено за %.2f с", res.Timestamp)
	}
	return err
}
