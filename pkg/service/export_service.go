package service

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"coin-design-enrich/pkg/artifact"
	"coin-design-enrich/pkg/model"
)

// exportTable is one DuckDB table rebuilt from an artifact.
type exportTable struct {
	name    string
	columns string
	ddl     string
	rows    func(dir string) ([][]any, error)
}

var exportTables = []exportTable{
	{
		name:    "enhanced_designs",
		columns: "id, design_id, new_list_of_strings",
		ddl: `
		CREATE TABLE enhanced_designs (
			id TEXT PRIMARY KEY,
			design_id INTEGER,
			new_list_of_strings TEXT
		)`,
		rows: func(dir string) ([][]any, error) {
			recs, err := artifact.Read[model.EnhancedDesign](filepath.Join(dir, artifact.EnhancedDesigns))
			if err != nil {
				return nil, err
			}
			out := make([][]any, 0, len(recs))
			for _, r := range recs {
				list, err := r.NewListOfStrings.Value()
				if err != nil {
					return nil, errors.Wrapf(err, "design %d", r.DesignID)
				}
				out = append(out, []any{uuid.NewString(), r.DesignID, list})
			}
			return out, nil
		},
	},
	{
		name:    "entity_validations",
		columns: "id, design_id, relevance, correctness, comment_enh",
		ddl: `
		CREATE TABLE entity_validations (
			id TEXT PRIMARY KEY,
			design_id INTEGER,
			relevance INTEGER,
			correctness INTEGER,
			comment_enh TEXT
		)`,
		rows: func(dir string) ([][]any, error) {
			recs, err := artifact.Read[model.EntityValidation](filepath.Join(dir, artifact.ValidatedEntities))
			if err != nil {
				return nil, err
			}
			out := make([][]any, 0, len(recs))
			for _, r := range recs {
				out = append(out, []any{uuid.NewString(), r.DesignID, r.Relevance, r.Correctness, r.CommentEnh})
			}
			return out, nil
		},
	},
	{
		name:    "pair_validations",
		columns: "id, design_id, s_o_id, validity_sop, comment_sop",
		ddl: `
		CREATE TABLE pair_validations (
			id TEXT PRIMARY KEY,
			design_id INTEGER,
			s_o_id TEXT,
			validity_sop INTEGER,
			comment_sop TEXT
		)`,
		rows: func(dir string) ([][]any, error) {
			recs, err := artifact.Read[model.PairValidation](filepath.Join(dir, artifact.ValidatedPairs))
			if err != nil {
				return nil, err
			}
			out := make([][]any, 0, len(recs))
			for _, r := range recs {
				out = append(out, []any{uuid.NewString(), r.DesignID, r.SOID, r.ValiditySOP, r.CommentSOP})
			}
			return out, nil
		},
	},
	{
		name:    "spo_triples",
		columns: "id, design_id, s_o_id, s, subject_class, predicate, o, object_class",
		ddl: `
		CREATE TABLE spo_triples (
			id TEXT PRIMARY KEY,
			design_id INTEGER,
			s_o_id TEXT,
			s TEXT,
			subject_class TEXT,
			predicate TEXT,
			o TEXT,
			object_class TEXT
		)`,
		rows: func(dir string) ([][]any, error) {
			recs, err := artifact.Read[model.Triple](filepath.Join(dir, artifact.PairsWithPredicates))
			if err != nil {
				return nil, err
			}
			out := make([][]any, 0, len(recs))
			for _, r := range recs {
				out = append(out, []any{uuid.NewString(), r.DesignID, r.SOID, r.Subject, r.SubjectClass,
					r.PredicateOrNull(), r.Object, r.ObjectClass})
			}
			return out, nil
		},
	},
	{
		name:    "triple_validations",
		columns: "id, design_id, s_o_id, validity_pred, comment_pred, implicit_pred",
		ddl: `
		CREATE TABLE triple_validations (
			id TEXT PRIMARY KEY,
			design_id INTEGER,
			s_o_id TEXT,
			validity_pred INTEGER,
			comment_pred TEXT,
			implicit_pred TEXT
		)`,
		rows: func(dir string) ([][]any, error) {
			recs, err := artifact.Read[model.TripleValidation](filepath.Join(dir, artifact.ValidatedTriples))
			if err != nil {
				return nil, err
			}
			out := make([][]any, 0, len(recs))
			for _, r := range recs {
				out = append(out, []any{uuid.NewString(), r.DesignID, r.SOID, r.ValidityPred, r.CommentPred, r.ImplicitPred})
			}
			return out, nil
		},
	},
}

// ExportService 将各阶段的 JSON 结果导出到 DuckDB
type ExportService struct {
	db  *sql.DB
	dir string
}

func NewExportService(db *sql.DB, artifactDir string) *ExportService {
	return &ExportService{db: db, dir: artifactDir}
}

// Export 重建所有导出表，返回每张表写入的行数
func (s *ExportService) Export(ctx context.Context) (map[string]int, error) {
	if s.db == nil {
		return nil, errors.New("DuckDB 连接未初始化")
	}
	startTime := time.Now()
	counts := make(map[string]int, len(exportTables))
	for _, t := range exportTables {
		rows, err := t.rows(s.dir)
		if err != nil {
			return counts, errors.Wrapf(err, "读取 %s 数据失败", t.name)
		}
		if err := s.replaceTable(ctx, t, rows); err != nil {
			return counts, err
		}
		counts[t.name] = len(rows)
		zap.S().Infof("%s: 写入 %d 条", t.name, len(rows))
	}
	zap.S().Infof("耗时：%s", time.Since(startTime))
	return counts, nil
}

// replaceTable 删除旧表后重建并写入，整个过程在一个事务内
func (s *ExportService) replaceTable(ctx context.Context, t exportTable, rows [][]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "开启事务失败")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+t.name); err != nil {
		return errors.Wrapf(err, "删除旧表 %s 失败", t.name)
	}
	if _, err := tx.ExecContext(ctx, t.ddl); err != nil {
		return errors.Wrapf(err, "创建表 %s 失败", t.name)
	}
	if len(rows) > 0 {
		stmt, err := tx.PrepareContext(ctx, insertSQL(t.name, t.columns, len(rows[0])))
		if err != nil {
			return errors.Wrapf(err, "准备 %s 插入语句失败", t.name)
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx, row...); err != nil {
				return errors.Wrapf(err, "插入 %s 数据失败", t.name)
			}
		}
	}
	return errors.Wrapf(tx.Commit(), "提交 %s 失败", t.name)
}

func insertSQL(table, columns string, n int) string {
	placeholders := "?"
	for i := 1; i < n; i++ {
		placeholders += ", ?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, columns, placeholders)
}

// GetTableCount 获取导出表的行数
func (s *ExportService) GetTableCount(ctx context.Context, table string) (int64, error) {
	if s.db == nil {
		return 0, errors.New("DuckDB 连接未初始化")
	}
	known := false
	for _, t := range exportTables {
		known = known || t.name == table
	}
	if !known {
		return 0, errors.Errorf("unknown export table %q", table)
	}
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "查询数量失败")
	}
	return count, nil
}
