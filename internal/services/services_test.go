package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/collab-docs-api/internal/models"
	"github.com/yukikurage/collab-docs-api/internal/repository"
	"github.com/yukikurage/collab-docs-api/internal/revocation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type serviceTestEnv struct {
	db         *gorm.DB
	users      repository.UserRepository
	workspaces repository.WorkspaceRepository
	documents  repository.DocumentRepository
	tokens     *JWTTokenService
	denylist   *revocation.MemoryDenylist
	auth       *AuthService
	gate       *AccessGate
	wsService  *WorkspaceService
	docService *DocumentService
}

func setupServiceTestEnv(t *testing.T, opts ...DocumentServiceOption) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Workspace{}, &models.Document{}))

	users := repository.NewUserRepository(db)
	workspaces := repository.NewWorkspaceRepository(db)
	documents := repository.NewDocumentRepository(db)
	tokens := NewJWTTokenService("test-secret", time.Hour)
	denylist := revocation.NewMemoryDenylist()

	return serviceTestEnv{
		db:         db,
		users:      users,
		workspaces: workspaces,
		documents:  documents,
		tokens:     tokens,
		denylist:   denylist,
		auth:       NewAuthService(users, NewBcryptHasher(bcrypt.MinCost), tokens, denylist, DeleteCascade),
		gate:       NewAccessGate(tokens, users, denylist),
		wsService:  NewWorkspaceService(workspaces, documents, DeleteCascade),
		docService: NewDocumentService(documents, workspaces, opts...),
	}
}

func (env serviceTestEnv) register(t *testing.T, name string) Identity {
	t.Helper()
	user, err := env.auth.Register(context.Background(), RegisterInput{
		Fullname: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return Identity{UserID: user.ID}
}

func (env serviceTestEnv) workspace(t *testing.T, owner Identity, name string) *models.Workspace {
	t.Helper()
	ws, err := env.wsService.Create(context.Background(), owner, name)
	require.NoError(t, err)
	return ws
}

func (env serviceTestEnv) document(t *testing.T, author Identity, workspaceID uint64, name string) *models.Document {
	t.Helper()
	doc, err := env.docService.Create(context.Background(), author, CreateDocumentInput{
		Name:        name,
		Content:     "content of " + name,
		WorkspaceID: workspaceID,
	})
	require.NoError(t, err)
	return doc
}

func (env serviceTestEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(model).Count(&n).Error)
	return n
}
