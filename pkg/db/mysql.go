package db

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"coin-design-enrich/config"
	"coin-design-enrich/pkg/model"
)

var (
	tidb     *gorm.DB
	tidbErr  error
	tidbOnce sync.Once
)

// InitTiDB 初始化 MySQL/TiDB 连接，配置了 replicas 时读请求走从库。
// 第一次初始化的结果会被记住，失败后再次调用返回同一个错误
func InitTiDB(cfg *config.GlobalConfig) error {
	if cfg.MySQLConfig == nil {
		return errors.New("mysql config is not set")
	}
	tidbOnce.Do(func() {
		tidb, tidbErr = openTiDB(cfg.MySQLConfig)
		if tidbErr != nil {
			tidb = nil
		}
	})
	return tidbErr
}

func openTiDB(mc *config.MySQLConfig) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(mc.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open mysql")
	}
	if len(mc.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(mc.Replicas))
		for _, dsn := range mc.Replicas {
			replicas = append(replicas, mysql.Open(dsn))
		}
		resolver := dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		}).SetMaxIdleConns(mc.MaxIdle).SetMaxOpenConns(mc.MaxOpen)
		if err := conn.Use(resolver); err != nil {
			return nil, errors.Wrap(err, "register mysql replicas")
		}
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, errors.Wrap(err, "mysql pool")
	}
	sqlDB.SetMaxIdleConns(mc.MaxIdle)
	sqlDB.SetMaxOpenConns(mc.MaxOpen)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "ping mysql")
	}
	zap.S().Debugf("mysql %s:%d/%s 初始化完成, replicas=%d", mc.Host, mc.Port, mc.Database, len(mc.Replicas))
	return conn, nil
}

// GetDB 获取带上下文的 gorm 连接
func GetDB(ctx context.Context) *gorm.DB {
	if tidb == nil {
		return nil
	}
	return tidb.WithContext(ctx)
}

// DesignRepo reads the raw designs and the entity dictionary.
type DesignRepo struct {
	DB *gorm.DB
}

func NewDesignRepo(ctx context.Context) *DesignRepo {
	return &DesignRepo{DB: GetDB(ctx)}
}

func (r *DesignRepo) Designs(ctx context.Context) ([]model.Design, error) {
	if r.DB == nil {
		return nil, errors.New("mysql connection is not initialized")
	}
	var designs []model.Design
	if err := r.DB.WithContext(ctx).Select("id", "design_en").Order("id").Find(&designs).Error; err != nil {
		return nil, errors.Wrap(err, "load designs")
	}
	return designs, nil
}

func (r *DesignRepo) Entities(ctx context.Context) ([]model.EntityRow, error) {
	if r.DB == nil {
		return nil, errors.New("mysql connection is not initialized")
	}
	var rows []model.EntityRow
	err := r.DB.WithContext(ctx).
		Where("class IN ?", model.EntityClasses).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load entities")
	}
	return rows, nil
}
