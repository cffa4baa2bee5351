//go:build windows

package interrupt

import (
	"context"

	"github.com/moutend/go-hook/pkg/keyboard"
	"github.com/moutend/go-hook/pkg/types"
)

// monitorHotkeys: Q или CapsLock прерывают анализ
func (im *InterruptManager) monitorHotkeys(ctx context.Context) {
	eventChan := make(chan types.KeyboardEvent, 100)
	if err := keyboard.Install(nil, eventChan); err != nil {
		im.loggerManager.LogError(err, "Не удалось установить хук клавиатуры")
		return
	}
	defer keyboard.Uninstall()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-eventChan:
			if event.Message == types.WM_KEYDOWN && (event.VKCode == types.VK_Q || event.VKCode == types.VK_CAPITAL) {
				im.Interrupt("нажата клавиша Q")
				return
			}
		}
	}
}
