package sqlite_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tscat/internal/adapters/db/sqlite"
	"tscat/internal/domain"
)

type RepoSuite struct {
	suite.Suite
	ctx   context.Context
	db    *sql.DB
	files *sqlite.FileRepo
	units *sqlite.UnitRepo
	trans *sqlite.TranslationRepo
}

func TestRepoSuite(t *testing.T) {
	suite.Run(t, &RepoSuite{})
}

func (s *RepoSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := sqlite.Init(s.ctx, sqlite.MemoryPath)
	s.Require().NoError(err)
	s.db = db
	s.files = sqlite.NewFileRepo(db)
	s.units = sqlite.NewUnitRepo(db)
	s.trans = sqlite.NewTranslationRepo(db)
}

func (s *RepoSuite) TearDownTest() {
	s.Require().NoError(s.db.Close())
}

func (s *RepoSuite) createFile(path string) *domain.File {
	f := &domain.File{Path: path, Format: "ts", Language: "en_US", SourceLanguage: "fr_FR", Version: "2.1", Hash: "abc"}
	s.Require().NoError(s.files.Create(s.ctx, f))
	return f
}

func (s *RepoSuite) TestFileCRUD() {
	f := s.createFile("clients_en.ts")
	s.NotZero(f.ID)

	got, err := s.files.Get(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Equal("clients_en.ts", got.Path)
	s.Equal("fr_FR", got.SourceLanguage)
	s.False(got.CreatedAt.IsZero())

	second := s.createFile("company_en.ts")
	list, err := s.files.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(second.ID, list[0].ID)

	s.Require().NoError(s.files.Delete(s.ctx, f.ID))
	_, err = s.files.Get(s.ctx, f.ID)
	s.ErrorIs(err, domain.ErrNotFound)
	s.ErrorIs(s.files.Delete(s.ctx, f.ID), domain.ErrNotFound)
}

func (s *RepoSuite) TestUnitUpsertKeepsIdentity() {
	f := s.createFile("clients_en.ts")
	units := []*domain.Unit{
		{FileID: f.ID, Context: "ClientWidget", Key: "Ouvrir", SourceText: "Ouvrir", Comment: "menu", Position: 0},
		{FileID: f.ID, Context: "ClientWidget", Key: "Ouvrir", SourceText: "Ouvrir", Comment: "state", Position: 1},
		{FileID: f.ID, Context: "ClientWidget", Key: "%n doc(s)", SourceText: "%n doc(s)", Numerus: true, Position: 2},
	}
	s.Require().NoError(s.units.UpsertBatch(s.ctx, units))

	list, err := s.units.ListByFile(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("menu", list[0].Comment)
	s.Equal("state", list[1].Comment)
	s.True(list[2].Numerus)
	s.Equal("{}", list[0].MetadataRaw)

	units[0].SourceText = "Ouvrir…"
	units[0].Position = 5
	s.Require().NoError(s.units.UpsertBatch(s.ctx, units[:1]))
	again, err := s.units.ListByFile(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Require().Len(again, 3)
	s.Equal(list[0].ID, again[2].ID)
	s.Equal("Ouvrir…", again[2].SourceText)

	u, err := s.units.Get(s.ctx, list[1].ID)
	s.Require().NoError(err)
	s.Equal("state", u.Comment)
	_, err = s.units.Get(s.ctx, 9999)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *RepoSuite) TestUnitUpsertLargeBatch() {
	f := s.createFile("big.ts")
	units := make([]*domain.Unit, 1203)
	for i := range units {
		key := fmt.Sprintf("message %d", i)
		units[i] = &domain.Unit{FileID: f.ID, Context: "Big", Key: key, SourceText: key, Position: i}
	}
	s.Require().NoError(s.units.UpsertBatch(s.ctx, units))
	list, err := s.units.ListByFile(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Len(list, len(units))
}

func (s *RepoSuite) TestTranslations() {
	f := s.createFile("clients_en.ts")
	s.Require().NoError(s.units.UpsertBatch(s.ctx, []*domain.Unit{
		{FileID: f.ID, Context: "C", Key: "Oui", SourceText: "Oui", Position: 0},
		{FileID: f.ID, Context: "C", Key: "%n fichier(s)", SourceText: "%n fichier(s)", Numerus: true, Position: 1},
	}))
	units, err := s.units.ListByFile(s.ctx, f.ID)
	s.Require().NoError(err)

	missing, err := s.trans.Get(s.ctx, units[0].ID, "en_US")
	s.Require().NoError(err)
	s.Nil(missing)

	s.Require().NoError(s.trans.Upsert(s.ctx, &domain.Translation{UnitID: units[0].ID, Locale: "en_US", Text: "Yes", Status: domain.TypeUnfinished, Provider: "ollama"}))
	s.Require().NoError(s.trans.Upsert(s.ctx, &domain.Translation{UnitID: units[1].ID, Locale: "en_US", Text: "%n file", NumerusForms: []string{"%n file", "%n files"}}))
	s.Require().NoError(s.trans.Upsert(s.ctx, &domain.Translation{UnitID: units[0].ID, Locale: "de_DE", Text: "Ja"}))

	got, err := s.trans.Get(s.ctx, units[0].ID, "en_US")
	s.Require().NoError(err)
	s.Equal("Yes", got.Text)
	s.Equal(domain.TypeUnfinished, got.Status)
	s.Equal("ollama", got.Provider)
	s.Nil(got.NumerusForms)

	s.Require().NoError(s.trans.Upsert(s.ctx, &domain.Translation{UnitID: units[0].ID, Locale: "en_US", Text: "Yes", Status: domain.TypeFinished}))
	list, err := s.trans.ListByFileLocale(s.ctx, f.ID, "en_US")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal(domain.TypeFinished, list[0].Status)
	s.Empty(list[0].Provider)
	s.Equal([]string{"%n file", "%n files"}, list[1].NumerusForms)
}

func (s *RepoSuite) TestDeleteFileCascades() {
	f := s.createFile("clients_en.ts")
	s.Require().NoError(s.units.UpsertBatch(s.ctx, []*domain.Unit{{FileID: f.ID, Context: "C", Key: "Oui", SourceText: "Oui"}}))
	units, err := s.units.ListByFile(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.trans.Upsert(s.ctx, &domain.Translation{UnitID: units[0].ID, Locale: "en_US", Text: "Yes"}))

	s.Require().NoError(s.files.Delete(s.ctx, f.ID))
	units, err = s.units.ListByFile(s.ctx, f.ID)
	s.Require().NoError(err)
	s.Empty(units)
	var n int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, `SELECT COUNT(*) FROM translations`).Scan(&n))
	s.Zero(n)
}

func (s *RepoSuite) TestTransactorRollsBack() {
	tx := sqlite.NewTransactor(s.db)
	boom := errors.New("boom")
	err := tx.WithinTx(s.ctx, func(ctx context.Context) error {
		f := &domain.File{Path: "tx.ts", Format: "ts", Hash: "h"}
		if err := s.files.Create(ctx, f); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := s.units.UpsertBatch(ctx, []*domain.Unit{{FileID: f.ID, Context: "C", Key: "k", SourceText: "k"}}); err != nil {
				return err
			}
			return boom
		})
	})
	s.ErrorIs(err, boom)
	list, err := s.files.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *RepoSuite) TestCache() {
	cache := sqlite.NewCacheRepo(s.db)
	key := domain.CacheKey{Context: "ClientWidget", Source: "Bonjour", SrcLang: "fr", TgtLang: "en", Provider: "ollama", Model: "llama3"}
	miss, err := cache.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Nil(miss)

	s.Require().NoError(cache.Put(s.ctx, key, "Hi"))
	s.Require().NoError(cache.Put(s.ctx, key, "Hello"))

	hit, err := cache.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal("Hello", hit.Translation)
	s.Equal(key, hit.CacheKey)
	s.Equal(1, hit.Hits)
	hit, err = cache.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal(2, hit.Hits)

	otherModel := key
	otherModel.Model = "mistral"
	other, err := cache.Get(s.ctx, otherModel)
	s.Require().NoError(err)
	s.Nil(other)

	otherContext := key
	otherContext.Context = "CompanyManagement"
	other, err = cache.Get(s.ctx, otherContext)
	s.Require().NoError(err)
	s.Nil(other)
}

func (s *RepoSuite) TestTemplatesFallBackToGlobal() {
	templates := sqlite.NewTemplateRepo(s.db)
	fileID := int64(7)

	none, err := templates.GetEffective(s.ctx, "file", &fileID, "translate_single", "system")
	s.Require().NoError(err)
	s.Nil(none)

	s.Require().NoError(templates.Upsert(s.ctx, &domain.Template{Type: "translate_single", Role: "system", Body: "global"}))
	got, err := templates.GetEffective(s.ctx, "file", &fileID, "translate_single", "system")
	s.Require().NoError(err)
	s.Equal("global", got.Body)
	s.Equal("global", got.Scope)
	s.Nil(got.RefID)

	s.Require().NoError(templates.Upsert(s.ctx, &domain.Template{Scope: "file", RefID: &fileID, Type: "translate_single", Role: "system", Body: "file"}))
	got, err = templates.GetEffective(s.ctx, "file", &fileID, "translate_single", "system")
	s.Require().NoError(err)
	s.Equal("file", got.Body)
	s.Require().NotNil(got.RefID)
	s.Equal(fileID, *got.RefID)

	s.Require().NoError(templates.Upsert(s.ctx, &domain.Template{Type: "translate_single", Role: "system", Body: "global v2"}))
	other := int64(8)
	got, err = templates.GetEffective(s.ctx, "file", &other, "translate_single", "system")
	s.Require().NoError(err)
	s.Equal("global v2", got.Body)
}

func (s *RepoSuite) TestJobs() {
	jobs := sqlite.NewJobRepo(s.db)
	j := &domain.Job{Type: "fill", Status: domain.JobRunning, FileID: 1, ParamsRaw: `{"locale":"en_US"}`, Total: 3}
	id, err := jobs.Create(s.ctx, j)
	s.Require().NoError(err)
	s.Equal(id, j.ID)

	s.Require().NoError(jobs.UpdateProgress(s.ctx, id, 3, 1, 3, domain.JobDone))
	for i := 0; i < 3; i++ {
		s.Require().NoError(jobs.AddLog(s.ctx, &domain.JobLog{JobID: id, Level: "info", Message: fmt.Sprintf("line %d", i)}))
	}

	got, err := jobs.Get(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(domain.JobDone, got.Status)
	s.Equal(3, got.Progress)
	s.Equal(1, got.Failed)

	logs, err := jobs.ListLogs(s.ctx, id, 2)
	s.Require().NoError(err)
	s.Require().Len(logs, 2)
	s.Equal("line 1", logs[0].Message)
	s.Equal("line 2", logs[1].Message)

	list, err := jobs.List(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(list, 1)

	_, err = jobs.Get(s.ctx, 42)
	s.ErrorIs(err, domain.ErrNotFound)
}

func TestInitOnDiskIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tscat.db")
	for i := 0; i < 2; i++ {
		db, err := sqlite.Init(ctx, path)
		require.NoError(t, err)
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
		assert.Equal(t, 1, n)
		require.NoError(t, db.Close())
	}
}
