package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-lotes/internal/domain"
)

// EngineConfig parámetros del motor.
type EngineConfig struct {
	// MaxRetries reintentos de la transacción completa ante ErrConcurrencyConflict.
	MaxRetries int
	// RetryBackoff espera base entre reintentos (se multiplica por el intento).
	RetryBackoff time.Duration
}

// Engine es el único escritor de los contadores de stock y de las cantidades de los lotes.
// Toda salida, entrada o anulación pasa por aquí, dentro de TxRunner.Run.
type Engine struct {
	txRunner TxRunner
	locker   Locker
	cfg      EngineConfig
	log      zerolog.Logger
	now      func() time.Time
}

// NewEngine construye el motor. locker puede ser nil (solo bloqueo de filas en BD).
func NewEngine(txRunner TxRunner, locker Locker, cfg EngineConfig, log zerolog.Logger) *Engine {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 20 * time.Millisecond
	}
	return &Engine{
		txRunner: txRunner,
		locker:   locker,
		cfg:      cfg,
		log:      log.With().Str("component", "inventory_engine").Logger(),
		now:      time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Now hora actual según el reloj del motor.
func (e *Engine) Now() time.Time { return e.now() }

// Execute adquiere los bloqueos de los productos indicados y ejecuta fn dentro de una
// transacción. Ante ErrConcurrencyConflict (bloqueo no obtenido a tiempo, fila bloqueada o
// versión cambiada) reintenta el intento completo, bloqueo incluido, hasta MaxRetries veces.
// Una vez iniciada, la transacción no se cancela aunque ctx se cancele: el llamador que
// abandone la espera debe consultar el estado antes de reintentar.
func (e *Engine) Execute(ctx context.Context, productIDs []string, fn func(r Repos) error) error {
	keys := lockKeys(productIDs)
	var err error
	for attempt := 0; ; attempt++ {
		err = e.attempt(ctx, keys, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) || attempt >= e.cfg.MaxRetries {
			break
		}
		e.log.Warn().
			Err(err).
			Strs("product_ids", productIDs).
			Int("attempt", attempt+1).
			Msg("conflicto de concurrencia, reintentando")
		time.Sleep(e.cfg.RetryBackoff * time.Duration(attempt+1))
	}
	return err
}

// attempt toma los bloqueos y corre una transacción. La espera del bloqueo respeta ctx;
// la transacción no.
func (e *Engine) attempt(ctx context.Context, keys []string, fn func(r Repos) error) error {
	if e.locker != nil && len(keys) > 0 {
		unlock, err := e.locker.Lock(ctx, keys...)
		if err != nil {
			return err
		}
		defer unlock()
	}
	return e.txRunner.Run(context.WithoutCancel(ctx), fn)
}

// lockKeys ordena y elimina duplicados para adquirir los bloqueos siempre en el mismo orden.
func lockKeys(productIDs []string) []string {
	seen := make(map[string]struct{}, len(productIDs))
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, "stock:"+id)
	}
	sort.Strings(keys)
	return keys
}
