package interrupt

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"wordlewatch/internal/logger"
)

// InterruptManager отменяет контекст анализа по Q (Windows) или по SIGINT/SIGTERM
type InterruptManager struct {
	loggerManager *logger.LoggerManager
	signals       chan os.Signal
	cancel        context.CancelFunc
	once          sync.Once
	stopOnce      sync.Once
	done          chan struct{}
}

// NewInterruptManager создает новый менеджер прерываний
func NewInterruptManager(loggerManager *logger.LoggerManager) *InterruptManager {
	return &InterruptManager{
		loggerManager: loggerManager,
		signals:       make(chan os.Signal, 1),
		done:          make(chan struct{}),
	}
}

// StartMonitoring возвращает контекст, который отменяется при прерывании
func (im *InterruptManager) StartMonitoring(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	im.cancel = cancel

	signal.Notify(im.signals, os.Interrupt, syscall.SIGTERM)
	go im.monitorSignals()
	go im.monitorHotkeys(ctx)

	return ctx
}

// Interrupt отменяет контекст; повторные вызовы игнорируются
func (im *InterruptManager) Interrupt(reason string) {
	im.once.Do(func() {
		im.loggerManager.Warn("⛔ Прерывание: %s", reason)
		if im.cancel != nil {
			im.cancel()
		}
	})
}

// Stop снимает обработчики
func (im *InterruptManager) Stop() {
	im.stopOnce.Do(func() {
		signal.Stop(im.signals)
		close(im.done)
		if im.cancel != nil {
			im.cancel()
		}
	})
}

func (im *InterruptManager) monitorSignals() {
	select {
	case sig := <-im.signals:
		im.Interrupt(sig.String())
	case <-im.done:
	}
}
