//go:build !windows

package interrupt

import "context"

// Хук клавиатуры есть только под Windows, остаются сигналы
func (im *InterruptManager) monitorHotkeys(ctx context.Context) {}
