package engine

import "math"

// Smoother подтягивает отображаемое смещение к запрошенному на постоянную
// долю за кадр (как smooth-scroll с lerp 0.1). Регионы по-прежнему видят
// одно смещение на кадр - сглаженное.
type Smoother struct {
	Lerp    float64
	current float64
	target  float64
	started bool
}

func NewSmoother(lerp float64) *Smoother {
	if lerp <= 0 || lerp > 1 {
		lerp = 1
	}
	return &Smoother{Lerp: lerp}
}

// Step сдвигается к target и возвращает новое смещение. Первый вызов
// сразу прыгает в target, остаток меньше пикселя схлопывается.
func (s *Smoother) Step(target float64) float64 {
	s.target = target
	if !s.started {
		s.started = true
		s.current = target
		return s.current
	}
	s.current += (s.target - s.current) * s.Lerp
	// Субпиксельный хвост
	if math.Abs(s.target-s.current) < 0.5 {
		s.current = s.target
	}
	return s.current
}

func (s *Smoother) Settled() bool { return s.current == s.target }
