package output

import (
	"log"

	"github.com/char5742/clickpad-gestures/internal/gesture"
)

// LogEmitter は出力をログに書くだけのエミッター（-dry-run 用）
type LogEmitter struct {
	Logger *log.Logger
}

func (e LogEmitter) printf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (e LogEmitter) Motion(dx, dy int32) {
	e.printf("motion dx=%d dy=%d", dx, dy)
}

func (e LogEmitter) Button(b gesture.Button, pressed bool) {
	if pressed {
		e.printf("button %v press", b)
	} else {
		e.printf("button %v release", b)
	}
}

func (e LogEmitter) Scroll(dx, dy float64) {
	e.printf("scroll dx=%g dy=%g", dx, dy)
}
