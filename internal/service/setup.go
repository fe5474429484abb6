package service

import (
	"fmt"
	"log/slog"

	credentials "vault/internal/auth"
	"vault/internal/config"
	"vault/internal/domain/repositories"
	docsysRepo "vault/internal/domain/repositories/docsystem"
	docsysSvc "vault/internal/domain/services/docsystem"
	"vault/internal/repository/memory"
	"vault/internal/repository/postgres"
	postgresDocsys "vault/internal/repository/postgres/docsystem"
	authsvc "vault/internal/service/auth"
	"vault/internal/service/docsystem"
	"vault/internal/service/docsystem/converter"
)

// Repositories holds one storage backend's repositories
type Repositories struct {
	Users     repositories.UserRepository
	Documents docsysRepo.DocumentRepository
	Tags      docsysRepo.TagRepository
	Tx        repositories.TransactionManager
}

// PostgresRepositories builds repositories over a connection pool
func PostgresRepositories(repoConfig *postgres.RepositoryConfig) *Repositories {
	return &Repositories{
		Users:     postgres.NewUserRepository(repoConfig),
		Documents: postgresDocsys.NewDocumentRepository(repoConfig),
		Tags:      postgresDocsys.NewTagRepository(repoConfig),
		Tx:        postgres.NewTransactionManager(repoConfig.Pool, repoConfig.Logger),
	}
}

// MemoryRepositories builds process-local repositories. Data is lost on exit.
func MemoryRepositories() *Repositories {
	store := memory.NewStore()
	return &Repositories{
		Users:     memory.NewUserRepository(store),
		Documents: memory.NewDocumentRepository(store),
		Tags:      memory.NewTagRepository(store),
		Tx:        memory.NewTransactionManager(store),
	}
}

// Services holds every application service
type Services struct {
	Auth      *authsvc.SessionService
	Documents docsysSvc.DocumentService
	Tags      docsysSvc.TagService
	Import    docsysSvc.ImportService
}

// SetupServices wires the services over repos using cfg's token and hashing settings
func SetupServices(cfg *config.Config, repos *Repositories, logger *slog.Logger) (*Services, error) {
	tokens, err := credentials.NewJWTTokenIssuer(cfg.SecretKey, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL(), logger)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}
	passwords := credentials.NewBcryptCredentialStore(cfg.BcryptCost)

	authorizer := authsvc.NewOwnerBasedAuthorizer(repos.Documents, repos.Tags)
	reconciler := docsystem.NewTagReconciler(repos.Tags, repos.Tx, logger)
	documents := docsystem.NewDocumentService(
		repos.Documents,
		repos.Tags,
		repos.Tx,
		reconciler,
		authorizer,
		converter.NewMarkdownRenderer(),
		logger,
	)

	return &Services{
		Auth:      authsvc.NewSessionService(repos.Users, passwords, tokens, logger),
		Documents: documents,
		Tags:      docsystem.NewTagService(repos.Tags, authorizer, logger),
		Import:    docsystem.NewImportService(documents, converter.NewConverterRegistry(), logger),
	}, nil
}
