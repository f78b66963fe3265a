package stock

import "time"

// Clock abstrae el "ahora" para que la lógica de vencimientos sea
// determinística en tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock devuelve el reloj del sistema.
func SystemClock() Clock { return systemClock{} }
