package service

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sync"
)

// ErrorClass clasifica una falla de análisis para elegir el pool de mensajes.
type ErrorClass string

const (
	ErrorClassFaceNotDetected ErrorClass = "face_not_detected"
	ErrorClassGeneric         ErrorClass = "generic"
)

const (
	PickerRandom = "random"
	PickerRotate = "rotate"
)

//go:embed error_messages.json
var errorMessagesJSON []byte

// MessagePicker elige un índice dentro de un pool de tamaño n.
type MessagePicker interface {
	Pick(class ErrorClass, n int) int
}

type randomPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomPicker usa un generador con semilla fija: misma semilla, misma secuencia.
func NewRandomPicker(seed uint64) MessagePicker {
	return &randomPicker{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *randomPicker) Pick(_ ErrorClass, n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

type rotatingPicker struct {
	mu   sync.Mutex
	next map[ErrorClass]int
}

// NewRotatingPicker recorre cada pool en orden, con un contador por clase.
func NewRotatingPicker() MessagePicker {
	return &rotatingPicker{next: make(map[ErrorClass]int)}
}

func (p *rotatingPicker) Pick(class ErrorClass, n int) int {
	if n <= 1 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.next[class] % n
	p.next[class] = i + 1
	return i
}

// NewMessagePicker construye la estrategia configurada.
func NewMessagePicker(strategy string, seed uint64) (MessagePicker, error) {
	switch strategy {
	case "", PickerRandom:
		return NewRandomPicker(seed), nil
	case PickerRotate:
		return NewRotatingPicker(), nil
	default:
		return nil, fmt.Errorf("unknown message strategy %q", strategy)
	}
}

// MessageCatalog asocia cada clase de error a su pool de mensajes.
type MessageCatalog struct {
	pools  map[ErrorClass][]string
	picker MessagePicker
}

// LoadMessageCatalog lee los pools embebidos.
func LoadMessageCatalog(picker MessagePicker) (*MessageCatalog, error) {
	var raw map[ErrorClass][]string
	if err := json.Unmarshal(errorMessagesJSON, &raw); err != nil {
		return nil, fmt.Errorf("decode error messages: %w", err)
	}
	return NewMessageCatalog(raw, picker)
}

func NewMessageCatalog(pools map[ErrorClass][]string, picker MessagePicker) (*MessageCatalog, error) {
	for _, class := range []ErrorClass{ErrorClassFaceNotDetected, ErrorClassGeneric} {
		if len(pools[class]) == 0 {
			return nil, fmt.Errorf("message pool %q is empty", class)
		}
	}
	if picker == nil {
		picker = NewRotatingPicker()
	}
	return &MessageCatalog{pools: pools, picker: picker}, nil
}

// Message devuelve un mensaje del pool de la clase; clases desconocidas usan el genérico.
func (c *MessageCatalog) Message(class ErrorClass) string {
	pool, ok := c.pools[class]
	if !ok || len(pool) == 0 {
		class = ErrorClassGeneric
		pool = c.pools[class]
	}
	return pool[c.picker.Pick(class, len(pool))]
}

// Pool devuelve una copia del pool de la clase.
func (c *MessageCatalog) Pool(class ErrorClass) []string {
	return append([]string(nil), c.pools[class]...)
}
