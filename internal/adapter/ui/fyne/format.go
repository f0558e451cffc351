package fyne

import (
	"fmt"
	"time"
)

// formatClock renders d as mm:ss, or h:mm:ss from one hour on.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%.2d:%.2d", h, m, s)
	}
	return fmt.Sprintf("%.2d:%.2d", m, s)
}
