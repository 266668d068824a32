package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/collab-docs-api/internal/models"
	"github.com/yukikurage/collab-docs-api/internal/utils"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Fullname: email, Email: email, PasswordHash: "hashed"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedWorkspace(t *testing.T, db *gorm.DB, name string, ownerID uint64) *models.Workspace {
	t.Helper()
	ws := &models.Workspace{Name: name, WorkspaceAuthorID: ownerID}
	require.NoError(t, db.Create(ws).Error)
	return ws
}

func seedDocument(t *testing.T, db *gorm.DB, name string, workspaceID, authorID uint64) *models.Document {
	t.Helper()
	doc := &models.Document{Name: name, Content: "body of " + name, WorkspaceID: workspaceID, DocumentAuthorID: authorID}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestUserRepository_FindByEmailAndDuplicate(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db, WithQueryTimeout(time.Second))
	ctx := context.Background()

	user := &models.User{Fullname: "Ada", Email: "ada@example.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, user))

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Create(ctx, &models.User{Fullname: "Ada 2", Email: "ada@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_DeleteWithOwnedContent(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	aliceWS := seedWorkspace(t, db, "alice ws", alice.ID)
	bobWS := seedWorkspace(t, db, "bob ws", bob.ID)

	seedDocument(t, db, "bob in alice ws", aliceWS.ID, bob.ID)
	seedDocument(t, db, "alice in bob ws", bobWS.ID, alice.ID)
	kept := seedDocument(t, db, "bob in bob ws", bobWS.ID, bob.ID)

	workspaces, documents, err := repo.CountOwnedContent(ctx, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, workspaces)
	require.EqualValues(t, 1, documents)

	require.NoError(t, repo.DeleteWithOwnedContent(ctx, alice.ID))

	require.EqualValues(t, 1, countRows(t, db, &models.User{}))
	require.EqualValues(t, 1, countRows(t, db, &models.Workspace{}))

	var remaining []models.Document
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, kept.ID, remaining[0].ID)

	err = repo.DeleteWithOwnedContent(ctx, alice.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWorkspaceRepository_ListFiltersAndPaginates(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewWorkspaceRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	for _, name := range []string{"a1", "a2", "a3"} {
		seedWorkspace(t, db, name, alice.ID)
	}
	seedWorkspace(t, db, "b1", bob.ID)

	all, total, err := repo.List(ctx, WorkspaceFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 4, total)
	require.Len(t, all, 4)

	page, total, err := repo.List(ctx, WorkspaceFilter{
		AuthorID:   &alice.ID,
		Pagination: utils.NewPaginationParams(2, 2),
	})
	require.NoError(t, err)
	require.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	require.Equal(t, "a3", page[0].Name)
	require.Equal(t, alice.Fullname, page[0].WorkspaceAuthor.Fullname)
}

func TestWorkspaceRepository_DeleteWithDocuments(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewWorkspaceRepository(db)
	docs := NewDocumentRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	ws := seedWorkspace(t, db, "ws", owner.ID)
	other := seedWorkspace(t, db, "other", owner.ID)
	seedDocument(t, db, "one", ws.ID, owner.ID)
	seedDocument(t, db, "two", ws.ID, owner.ID)
	seedDocument(t, db, "elsewhere", other.ID, owner.ID)

	count, err := docs.CountByWorkspace(ctx, ws.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	require.NoError(t, repo.DeleteWithDocuments(ctx, ws.ID))

	_, err = repo.FindByID(ctx, ws.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.EqualValues(t, 1, countRows(t, db, &models.Document{}))

	require.ErrorIs(t, repo.DeleteWithDocuments(ctx, ws.ID), gorm.ErrRecordNotFound)
	require.ErrorIs(t, repo.Delete(ctx, ws.ID), gorm.ErrRecordNotFound)
}

func TestDocumentRepository_UpdateKeepsOwnership(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner@example.com")
	ws := seedWorkspace(t, db, "ws", owner.ID)
	other := seedWorkspace(t, db, "other", owner.ID)
	doc := seedDocument(t, db, "draft", ws.ID, owner.ID)

	doc.Name = "final"
	doc.Content = ""
	doc.WorkspaceID = other.ID
	require.NoError(t, repo.Update(ctx, doc))

	reloaded, err := repo.FindByID(ctx, doc.ID, "Workspace", "DocumentAuthor")
	require.NoError(t, err)
	require.Equal(t, "final", reloaded.Name)
	require.Empty(t, reloaded.Content)
	require.Equal(t, ws.ID, reloaded.WorkspaceID)
	require.Equal(t, ws.ID, reloaded.Workspace.ID)
	require.Equal(t, owner.Email, reloaded.DocumentAuthor.Email)
}

func TestDocumentRepository_ListByWorkspaceAndAuthor(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")
	ws := seedWorkspace(t, db, "ws", alice.ID)
	seedDocument(t, db, "a", ws.ID, alice.ID)
	seedDocument(t, db, "b", ws.ID, bob.ID)

	inWS, total, err := repo.List(ctx, DocumentFilter{WorkspaceID: &ws.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, inWS, 2)
	require.Equal(t, alice.Fullname, inWS[0].DocumentAuthor.Fullname)
	require.Equal(t, ws.WorkspaceAuthorID, inWS[1].Workspace.WorkspaceAuthorID)

	byBob, total, err := repo.List(ctx, DocumentFilter{AuthorID: &bob.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "b", byBob[0].Name)
}

func TestUpdateAfterDelete_DoesNotRecreateRows(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	workspaces := NewWorkspaceRepository(db)
	documents := NewDocumentRepository(db)

	owner := seedUser(t, db, "owner@example.com")
	ws := seedWorkspace(t, db, "ws", owner.ID)
	doc := seedDocument(t, db, "doc", ws.ID, owner.ID)

	loadedWorkspace, err := workspaces.FindByID(ctx, ws.ID)
	require.NoError(t, err)
	loadedDocument, err := documents.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	loadedUser, err := users.FindByID(ctx, owner.ID)
	require.NoError(t, err)

	require.NoError(t, workspaces.DeleteWithDocuments(ctx, ws.ID))

	loadedWorkspace.Name = "renamed"
	require.ErrorIs(t, workspaces.Update(ctx, loadedWorkspace), gorm.ErrRecordNotFound)
	require.Zero(t, countRows(t, db, &models.Workspace{}))

	loadedDocument.Content = "edited"
	require.ErrorIs(t, documents.Update(ctx, loadedDocument), gorm.ErrRecordNotFound)
	require.Zero(t, countRows(t, db, &models.Document{}))

	require.NoError(t, users.DeleteWithOwnedContent(ctx, owner.ID))

	loadedUser.Fullname = "Back Again"
	require.ErrorIs(t, users.Update(ctx, loadedUser), gorm.ErrRecordNotFound)
	require.Zero(t, countRows(t, db, &models.User{}))
}

func TestUpdate_PersistsSelectedColumns(t *testing.T) {
	db := setupRepositoryTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	workspaces := NewWorkspaceRepository(db)

	owner := seedUser(t, db, "owner@example.com")
	ws := seedWorkspace(t, db, "ws", owner.ID)

	ws.Name = "renamed"
	require.NoError(t, workspaces.Update(ctx, ws))
	found, err := workspaces.FindByID(ctx, ws.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", found.Name)
	require.Equal(t, owner.ID, found.WorkspaceAuthorID)

	owner.Fullname = "Owner Renamed"
	owner.Email = "renamed@example.com"
	require.NoError(t, users.Update(ctx, owner))
	user, err := users.FindByEmail(ctx, "renamed@example.com")
	require.NoError(t, err)
	require.Equal(t, "Owner Renamed", user.Fullname)
	require.Equal(t, "hashed", user.PasswordHash)
}

func TestWorkspaceRepository_FindByID_NotFound_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "workspaces"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "workspace_author_id"}))

	_, err := repo.FindByID(context.Background(), 99)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepository_Delete_SecondDeleteNotFound_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewDocumentRepository(db)

	mock.ExpectExec(`DELETE FROM "documents"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "documents"`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), 5))
	require.ErrorIs(t, repo.Delete(context.Background(), 5), gorm.ErrRecordNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_DeleteWithDocuments_RollsBack_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewWorkspaceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "documents"`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "workspaces"`).WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.DeleteWithDocuments(context.Background(), 1)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_DeleteWithOwnedContent_WrapsStepError_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "documents"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.DeleteWithOwnedContent(context.Background(), 1)
	require.ErrorIs(t, err, ErrDeleteAuthoredDocuments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryTimeout_BoundsSlowQueries_Mock(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db, WithQueryTimeout(20*time.Millisecond))

	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillDelayFor(time.Second).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	start := time.Now()
	_, err := repo.FindByID(context.Background(), 1)
	require.Error(t, err)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}
