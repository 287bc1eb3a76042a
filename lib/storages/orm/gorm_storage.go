package orm

import (
	"log"
	"os"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pescuma/relnotes/lib/consoles"
	"github.com/pescuma/relnotes/lib/model"
	"github.com/pescuma/relnotes/lib/storages"
)

// sqlite limits the number of variables in a statement.
const maxQueryItems = 300

type gormStorage struct {
	mutex   sync.RWMutex
	db      *gorm.DB
	console consoles.Console

	config  *map[string]string
	commits map[string]*model.ClassifiedCommit

	sqlConfigs map[string]*sqlConfig
	sqlRepos   map[string]*sqlRepository
	sqlCommits map[string]*sqlCommit
}

func NewGormStorage(d gorm.Dialector, console consoles.Console) (storages.Storage, error) {
	l := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(d, &gorm.Config{
		NamingStrategy: &NamingStrategy{},
		Logger:         l,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Each connection to :memory: is a different database.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&sqlConfig{},
		&sqlRepository{},
		&sqlCommit{},
		&sqlFileChange{},
	)
	if err != nil {
		return nil, err
	}

	return &gormStorage{
		db:         db,
		console:    console,
		sqlConfigs: map[string]*sqlConfig{},
		sqlRepos:   map[string]*sqlRepository{},
		sqlCommits: map[string]*sqlCommit{},
	}, nil
}

func (s *gormStorage) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func createCache[T sqlTable](rows []T) map[string]T {
	return lo.Associate(rows, func(i T) (string, T) {
		return i.CacheKey(), i
	})
}

func (s *gormStorage) session() *gorm.DB {
	now := time.Now().Local()
	return s.db.Session(&gorm.Session{
		NowFunc:         func() time.Time { return now },
		CreateBatchSize: maxQueryItems,
	})
}

func (s *gormStorage) LoadRepositories() ([]*storages.Repository, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var repos []*sqlRepository
	err := s.db.Order("root_dir").Find(&repos).Error
	if err != nil {
		return nil, err
	}

	s.sqlRepos = createCache(repos)

	return lo.Map(repos, func(r *sqlRepository, _ int) *storages.Repository {
		return &storages.Repository{
			RootDir:    r.RootDir,
			Name:       r.Name,
			Branch:     r.Branch,
			LastImport: r.LastImport,
		}
	}), nil
}

func (s *gormStorage) WriteRepository(repo *storages.Repository) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sr := &sqlRepository{
		RootDir:    repo.RootDir,
		Name:       repo.Name,
		Branch:     repo.Branch,
		LastImport: repo.LastImport,
	}
	if !prepareChange(&s.sqlRepos, sr) {
		return nil
	}

	return s.session().Clauses(clause.OnConflict{UpdateAll: true}).Create(sr).Error
}

func (s *gormStorage) LoadCommits() ([]*model.ClassifiedCommit, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.commits != nil {
		return sortCommits(lo.Values(s.commits)), nil
	}

	s.console.Printf("Loading commits...\n")

	var commits []*sqlCommit
	err := s.db.Find(&commits).Error
	if err != nil {
		return nil, err
	}

	var files []*sqlFileChange
	err = s.db.Order("commit_hash, `index`").Find(&files).Error
	if err != nil {
		return nil, err
	}

	s.sqlCommits = createCache(commits)

	filesByCommit := lo.GroupBy(files, func(f *sqlFileChange) string { return f.CommitHash })

	result := make(map[string]*model.ClassifiedCommit, len(commits))
	for _, sc := range commits {
		c, err := sc.toModel(filesByCommit[sc.Hash])
		if err != nil {
			return nil, errors.Wrapf(err, "commit %v", sc.Hash)
		}

		result[sc.Hash] = c
	}

	s.commits = result
	return sortCommits(lo.Values(result)), nil
}

// sortCommits orders newest first, by committer date.
func sortCommits(commits []*model.ClassifiedCommit) []*model.ClassifiedCommit {
	sort.Slice(commits, func(i, j int) bool {
		ti := commits[i].Commit().Metadata().Committer().Timestamp()
		tj := commits[j].Commit().Metadata().Committer().Timestamp()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return commits[i].SHA() < commits[j].SHA()
	})
	return commits
}

func (s *gormStorage) LoadCommit(sha string) (*model.ClassifiedCommit, error) {
	prefix := strings.ToLower(strings.TrimSpace(sha))
	if !model.IsHexString(prefix) {
		return nil, errors.Wrapf(storages.ErrNotFound, "commit %q", sha)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if c, ok := s.commits[prefix]; ok {
		return c, nil
	}

	var commits []*sqlCommit
	err := s.db.Where("hash LIKE ?", prefix+"%").Limit(2).Find(&commits).Error
	if err != nil {
		return nil, err
	}

	switch len(commits) {
	case 0:
		return nil, errors.Wrapf(storages.ErrNotFound, "commit %q", sha)
	case 1:
	default:
		return nil, errors.Wrapf(storages.ErrAmbiguous, "commit %q", sha)
	}

	sc := commits[0]

	var files []*sqlFileChange
	err = s.db.Where("commit_hash = ?", sc.Hash).Order("`index`").Find(&files).Error
	if err != nil {
		return nil, err
	}

	c, err := sc.toModel(files)
	if err != nil {
		return nil, errors.Wrapf(err, "commit %v", sc.Hash)
	}

	return c, nil
}

func (s *gormStorage) LoadCommitHashes(rootDir string) (*set.Set[string], error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var hashes []string
	err := s.db.Model(&sqlCommit{}).Where("repository_dir = ?", rootDir).Pluck("hash", &hashes).Error
	if err != nil {
		return nil, err
	}

	return set.From(hashes), nil
}

func (s *gormStorage) WriteCommits(rootDir string, commits []*model.ClassifiedCommit) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var sqlCommits []*sqlCommit
	var sqlFiles []*sqlFileChange
	var changed []string
	withoutAISummary := map[string]*model.ClassifiedCommit{}
	for _, c := range commits {
		sc := newSqlCommit(rootDir, c)
		if sc.AISummary == nil {
			if o, ok := s.sqlCommits[sc.Hash]; ok && o.AISummary != nil {
				sc.AISummary = o.AISummary
				c.Commit().SetAISummary(*o.AISummary)
			}
		}
		if !prepareChange(&s.sqlCommits, sc) {
			continue
		}

		sqlCommits = append(sqlCommits, sc)
		changed = append(changed, sc.Hash)
		if sc.AISummary == nil {
			withoutAISummary[sc.Hash] = c
		}

		for i, f := range c.Commit().Diff().Modifications() {
			sqlFiles = append(sqlFiles, newSqlFileChange(sc.Hash, i, f))
		}
	}

	if len(sqlCommits) == 0 {
		return nil
	}

	err := s.session().Transaction(func(tx *gorm.DB) error {
		err := keepAISummaries(tx, sqlCommits, withoutAISummary)
		if err != nil {
			return err
		}

		err = tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sqlCommits).Error
		if err != nil {
			return err
		}

		for _, chunk := range lo.Chunk(changed, maxQueryItems) {
			err = tx.Where("commit_hash IN ?", chunk).Delete(&sqlFileChange{}).Error
			if err != nil {
				return err
			}
		}

		if len(sqlFiles) > 0 {
			err = tx.Create(&sqlFiles).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		// The caches no longer reflect the database.
		s.sqlCommits = map[string]*sqlCommit{}
		s.commits = nil
		return err
	}

	if s.commits != nil {
		for _, c := range commits {
			s.commits[c.SHA()] = c
		}
	}

	return nil
}

// keepAISummaries copies stored AI summaries into rows being rewritten without
// one, so a re-import does not drop annotations.
func keepAISummaries(tx *gorm.DB, rows []*sqlCommit, without map[string]*model.ClassifiedCommit) error {
	if len(without) == 0 {
		return nil
	}

	stored := map[string]string{}
	for _, chunk := range lo.Chunk(lo.Keys(without), maxQueryItems) {
		var found []*sqlCommit
		err := tx.Select("hash", "ai_summary").
			Where("hash IN ? AND ai_summary IS NOT NULL", chunk).
			Find(&found).Error
		if err != nil {
			return err
		}

		for _, f := range found {
			stored[f.Hash] = *f.AISummary
		}
	}

	for _, row := range rows {
		summary, ok := stored[row.Hash]
		if !ok {
			continue
		}

		row.AISummary = lo.ToPtr(summary)
		without[row.Hash].Commit().SetAISummary(summary)
	}

	return nil
}

func (s *gormStorage) WriteAISummary(sha string, summary string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	summary = strings.TrimSpace(summary)

	var value *string
	if summary != "" {
		value = &summary
	}

	result := s.session().Model(&sqlCommit{}).Where("hash = ?", sha).Update("ai_summary", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.Wrapf(storages.ErrNotFound, "commit %q", sha)
	}

	if sc, ok := s.sqlCommits[sha]; ok {
		sc.AISummary = value
	}
	if c, ok := s.commits[sha]; ok {
		c.Commit().SetAISummary(summary)
	}

	return nil
}

func (s *gormStorage) CountChangeTypes() (map[model.ChangeType]int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var rows []struct {
		ChangeType model.ChangeType
		Total      int
	}
	err := s.db.Model(&sqlCommit{}).
		Select("change_type, count(*) as total").
		Group("change_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[model.ChangeType]int, len(rows))
	for _, r := range rows {
		result[r.ChangeType] = r.Total
	}
	return result, nil
}

func (s *gormStorage) LoadConfig() (*map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.config != nil {
		return s.config, nil
	}

	result := map[string]string{}

	var sqlConfigs []*sqlConfig
	err := s.db.Find(&sqlConfigs).Error
	if err != nil {
		return nil, err
	}

	s.sqlConfigs = createCache(sqlConfigs)

	for _, sc := range sqlConfigs {
		result[sc.Key] = sc.Value
	}

	s.config = &result
	return &result, nil
}

func (s *gormStorage) WriteConfig() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.config == nil {
		return nil
	}

	var sqlConfigs []*sqlConfig
	for k, v := range *s.config {
		sc := newSqlConfig(k, v)
		if prepareChange(&s.sqlConfigs, sc) {
			sqlConfigs = append(sqlConfigs, sc)
		}
	}

	removed := lo.Filter(lo.Keys(s.sqlConfigs), func(k string, _ int) bool {
		_, ok := (*s.config)[k]
		return !ok
	})

	db := s.session()

	if len(sqlConfigs) > 0 {
		err := db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sqlConfigs).Error
		if err != nil {
			return err
		}
	}

	if len(removed) > 0 {
		err := db.Where("`key` IN ?", removed).Delete(&sqlConfig{}).Error
		if err != nil {
			return err
		}

		for _, k := range removed {
			delete(s.sqlConfigs, k)
		}
	}

	return nil
}

func prepareChange[T sqlTable](byID *map[string]T, n T) bool {
	o, ok := (*byID)[n.CacheKey()]
	if ok {
		ro := reflect.Indirect(reflect.ValueOf(o))
		rn := reflect.Indirect(reflect.ValueOf(n))

		rn.FieldByName("CreatedAt").Set(ro.FieldByName("CreatedAt"))
		rn.FieldByName("UpdatedAt").Set(ro.FieldByName("UpdatedAt"))
	}

	if ok && reflect.DeepEqual(n, o) {
		return false
	}

	(*byID)[n.CacheKey()] = n
	return true
}
