package deps

import (
	"context"
	"time"

	"authd/internal/config"
	dl "authd/internal/core/domain/logging"
	duow "authd/internal/core/domain/unit_of_work"
	"authd/internal/core/domain/user"
	uow "authd/internal/db/unit_of_work"
	dbuser "authd/internal/db/user"
	"authd/internal/implementations/email"
	"authd/internal/implementations/logging"
	"authd/internal/implementations/notification"
	passwordhasher "authd/internal/implementations/password_hasher"
	resettoken "authd/internal/implementations/reset_token"
	"authd/internal/implementations/session"
	sessionstore "authd/internal/implementations/session_store"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/go-redis/redis/v9"
	"github.com/jackc/pgx/v4/pgxpool"
)

type Deps struct {
	Config    *config.Config
	AwsConfig aws.Config
	Logger    dl.Logger

	DB    *pgxpool.Pool
	Redis *redis.Client

	Now func() time.Time

	UnitOfWork        duow.UnitOfWork
	UserRepository    user.UserRepository
	SessionRepository user.SessionRepository

	EmailSender            *email.EmailSender
	NotificationDispatcher *notification.Dispatcher

	PasswordHasher                    user.PasswordHasher
	SessionTokenGenerator             user.SessionTokenGenerator
	PasswordResetTokenGenerator       user.PasswordResetTokenGenerator
	PasswordResetTokenHasher          user.PasswordResetTokenHasher
	PasswordResetTokenSender          user.PasswordResetTokenSender
	PasswordChangedNotificationSender user.PasswordChangedNotificationSender
}

func InitDeps() (*Deps, func()) {
	deps := &Deps{}

	deps.initConfig()
	deps.initAwsConfig()

	closeLogger := deps.initLogger()
	closePgxPool := deps.initPgxPool()
	closeRedisClient := deps.initRedisClient()

	deps.Now = func() time.Time { return time.Now().UTC() }

	deps.UnitOfWork = uow.NewPgxUnitOfWork(deps.DB)
	deps.UserRepository = dbuser.NewPgxRepository(deps.DB)
	deps.SessionRepository = sessionstore.NewRedis(
		deps.Redis,
		deps.UserRepository,
		deps.Config.SessionValidDuration,
	)

	deps.EmailSender = email.NewEmailSender(
		deps.AwsConfig,
		deps.Config.AwsEmailSender,
		deps.Config.AwsEmailPasswordResetTemplate,
		deps.Config.PasswordResetBaseURL,
		deps.Config.AwsEmailPasswordChangedTemplate,
		deps.Config.PasswordResetValidDuration,
	)
	deps.NotificationDispatcher = notification.NewDispatcher(
		deps.Logger,
		deps.EmailSender,
		deps.EmailSender,
		deps.Config.NotificationQueueSize,
		deps.Config.NotificationWorkerCount,
		deps.Config.NotificationSendTimeout,
	)

	deps.PasswordHasher = passwordhasher.NewBcrypt(
		deps.Config.Secret,
		deps.Config.BcryptHasherCost,
		deps.Config.BcryptHasherMaxConcurrency,
	)
	deps.SessionTokenGenerator = session.NewUUID()
	deps.PasswordResetTokenGenerator = resettoken.NewGenerator()
	deps.PasswordResetTokenHasher = resettoken.NewSHA256Hasher()
	deps.PasswordResetTokenSender = deps.NotificationDispatcher
	deps.PasswordChangedNotificationSender = deps.NotificationDispatcher

	return deps, func() {
		deps.NotificationDispatcher.Close()
		closeRedisClient()
		closePgxPool()
		closeLogger()
	}
}

func (deps *Deps) initConfig() {
	config, err := config.Load()
	if err != nil {
		panic(err)
	}
	deps.Config = config
}

func (deps *Deps) initAwsConfig() {
	cfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(deps.Config.AwsRegion),
		awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				deps.Config.AwsAccessKey,
				deps.Config.AwsSecretKey,
				"",
			),
		),
		awsConfig.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.AddWithMaxBackoffDelay(retry.NewStandard(), time.Second*5),
				3,
			)
		}),
	)
	if err != nil {
		panic(err)
	}
	deps.AwsConfig = cfg
}

func (deps *Deps) initLogger() func() {
	logger := logging.NewZapLogger()
	deps.Logger = logger
	return func() { logger.Sync() }
}

func (deps *Deps) initPgxPool() func() {
	db, err := pgxpool.Connect(context.Background(), deps.Config.PostgresqlURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to DB.", dl.Entry("err", err))
		panic(err)
	}
	deps.DB = db
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down DB connection.")
		db.Close()
		deps.Logger.Info(context.Background(), "DB connection shut down.")
	}
}

func (deps *Deps) initRedisClient() func() {
	redisOpt, err := redis.ParseURL(deps.Config.RedisURL)
	if err != nil {
		deps.Logger.Error(context.Background(), "Could not connect to Redis.", dl.Entry("err", err))
		panic(err)
	}
	redisClient := redis.NewClient(redisOpt)
	deps.Redis = redisClient
	return func() {
		deps.Logger.Info(context.Background(), "Shutting down Redis client.")
		redisClient.Close()
		deps.Logger.Info(context.Background(), "Redis client shut down.")
	}
}
