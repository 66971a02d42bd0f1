package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/boulangerie-api/internal/domain"
	"github.com/jhoicas/boulangerie-api/pkg/logger"
)

const (
	versionKey  = "boulangerie:analytics:version"
	keyPrefix   = "boulangerie:analytics"
	bumpChannel = "boulangerie.ledger.bump"
)

// Cache caché de resultados de analítica en Redis con versión global.
// Cada movimiento confirmado incrementa la versión y deja huérfanas las claves anteriores
// (caducan por TTL). Un Cache nil o sin cliente delega siempre en el loader.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// New construye la caché sobre un cliente existente.
func New(client *redis.Client, ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, log: logger.OrNop(log).Named("cache")}
}

// Connect crea el cliente desde una URL redis:// y comprueba la conexión.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("%w: redis url: %w", domain.ErrInvalidInput, err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: redis ping: %w", domain.ErrPersistence, err)
	}
	return client, nil
}

func (c *Cache) enabled() bool { return c != nil && c.client != nil }

// Version devuelve la versión vigente, inicializándola si falta.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// otra instancia puede inicializarla a la vez
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, versionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey compone la clave con la versión vigente.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(append([]string{keyPrefix}, parts...), ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return joined + ":v" + strconv.FormatInt(ver, 10), nil
}

// FetchJSON lee la clave o, si falta, ejecuta loader y guarda su resultado.
// Un Redis caído no rompe la consulta: se registra y se sirve el loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	if c.enabled() {
		payload, err := c.client.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			return json.Unmarshal(payload, dest)
		case !errors.Is(err, redis.Nil):
			c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida")
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c.enabled() {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida todo lo cacheado incrementando la versión y avisa a otras instancias.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, versionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// Invalidate implementa inventory.Invalidator.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.Bump(ctx)
}

// Listen se suscribe a los avisos de bump de otras instancias y llama a onBump con cada uno.
// Termina al cancelar ctx.
func (c *Cache) Listen(ctx context.Context, onBump func()) {
	if !c.enabled() || onBump == nil {
		return
	}
	sub := c.client.Subscribe(ctx, bumpChannel)
	go func() {
		defer func() { _ = sub.Close() }()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				onBump()
			}
		}
	}()
}
