package container

import (
	"sync"

	gstorage "cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/quranapp/backend/config"
	"github.com/quranapp/backend/internal/infrastructure/storage"
	"github.com/quranapp/backend/pkg/helpers"
)

// Container holds process-wide singletons wired at startup.
var (
	mu sync.RWMutex

	cfg       *config.Config
	logger    *logrus.Logger
	pgPool    *pgxpool.Pool
	redisCli  *redis.Client
	gcsClient *gstorage.Client
	profiles  storage.ProfileStorage
	jwtMgr    *helpers.JWTManager
	waPub     *helpers.RabbitPublisher
	mailPub   *helpers.RabbitPublisher
)

func SetConfig(c *config.Config) { mu.Lock(); defer mu.Unlock(); cfg = c }
func GetConfig() *config.Config  { mu.RLock(); defer mu.RUnlock(); return cfg }

func SetLogger(l *logrus.Logger) { mu.Lock(); defer mu.Unlock(); logger = l }
func GetLogger() *logrus.Logger  { mu.RLock(); defer mu.RUnlock(); return logger }

func SetPool(p *pgxpool.Pool) { mu.Lock(); defer mu.Unlock(); pgPool = p }
func GetPool() *pgxpool.Pool  { mu.RLock(); defer mu.RUnlock(); return pgPool }

func SetRedis(r *redis.Client) { mu.Lock(); defer mu.Unlock(); redisCli = r }
func GetRedis() *redis.Client  { mu.RLock(); defer mu.RUnlock(); return redisCli }

func SetGCS(c *gstorage.Client) { mu.Lock(); defer mu.Unlock(); gcsClient = c }
func GetGCS() *gstorage.Client  { mu.RLock(); defer mu.RUnlock(); return gcsClient }

func SetProfileStorage(s storage.ProfileStorage) { mu.Lock(); defer mu.Unlock(); profiles = s }
func GetProfileStorage() storage.ProfileStorage  { mu.RLock(); defer mu.RUnlock(); return profiles }

func SetJWT(m *helpers.JWTManager) { mu.Lock(); defer mu.Unlock(); jwtMgr = m }
func GetJWT() *helpers.JWTManager  { mu.RLock(); defer mu.RUnlock(); return jwtMgr }

func SetWAPub(p *helpers.RabbitPublisher) { mu.Lock(); defer mu.Unlock(); waPub = p }
func GetWAPub() *helpers.RabbitPublisher  { mu.RLock(); defer mu.RUnlock(); return waPub }

func SetMailPub(p *helpers.RabbitPublisher) { mu.Lock(); defer mu.Unlock(); mailPub = p }
func GetMailPub() *helpers.RabbitPublisher  { mu.RLock(); defer mu.RUnlock(); return mailPub }
