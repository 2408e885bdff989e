// persistence/gorm_postgresql.go
package persistence

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wfunc/findthespy/models"
	"github.com/wfunc/findthespy/state"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: time.Second,
			LogLevel:      gormlogger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := autoMigrate(db); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// autoMigrate 自动迁移表结构
func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.GormRoom{},
		&models.GormPlayer{},
		&models.GormVote{},
		&models.GormRoundResult{},
	)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}

// --- Rooms ---

func (p *GormPostgreSQL) CreateRoom(code string, mafiaCount int, hostName string) error {
	room := models.GormRoom{
		Code:         code,
		MafiaCount:   mafiaCount,
		HostName:     hostName,
		Status:       string(state.StatusWaiting),
		CurrentPhase: string(state.PhaseNone),
	}
	return translate(p.db.Create(&room).Error)
}

func (p *GormPostgreSQL) GetRoom(code string) (*models.Room, error) {
	var room models.GormRoom
	if err := p.db.Where("code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &models.Room{
		Code:         room.Code,
		MafiaCount:   room.MafiaCount,
		HostName:     room.HostName,
		Status:       state.Status(room.Status),
		CurrentPhase: state.Phase(room.CurrentPhase),
	}, nil
}

func (p *GormPostgreSQL) RoomExists(code string) (bool, error) {
	var count int64
	err := p.db.Model(&models.GormRoom{}).Where("code = ?", code).Count(&count).Error
	return count > 0, translate(err)
}

func (p *GormPostgreSQL) SetRoomPhase(code string, status state.Status, phase state.Phase) error {
	result := p.db.Model(&models.GormRoom{}).Where("code = ?", code).
		Updates(map[string]interface{}{
			"status":        string(status),
			"current_phase": string(phase),
		})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Players ---

func (p *GormPostgreSQL) AddPlayer(code, name string) error {
	player := models.GormPlayer{RoomCode: code, Name: name}
	return translate(p.db.Create(&player).Error)
}

func (p *GormPostgreSQL) GetPlayer(code, name string) (*models.Player, error) {
	var player models.GormPlayer
	if err := p.db.Where("room_code = ? AND name = ?", code, name).First(&player).Error; err != nil {
		return nil, translate(err)
	}
	return toPlayer(&player), nil
}

func (p *GormPostgreSQL) ListPlayers(code string) ([]models.Player, error) {
	var rows []models.GormPlayer
	if err := p.db.Where("room_code = ?", code).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	players := make([]models.Player, 0, len(rows))
	for i := range rows {
		players = append(players, *toPlayer(&rows[i]))
	}
	return players, nil
}

func (p *GormPostgreSQL) CountPlayers(code string) (int, error) {
	var count int64
	err := p.db.Model(&models.GormPlayer{}).Where("room_code = ?", code).Count(&count).Error
	return int(count), translate(err)
}

// AssignRoles 在单个事务内写入整个房间的角色与词语，全部成功或全部回滚
func (p *GormPostgreSQL) AssignRoles(code string, round int, assignments []models.RoleAssignment) error {
	return p.Transaction(func(tx Store) error {
		g := tx.(*GormPostgreSQL)
		for _, a := range assignments {
			result := g.db.Model(&models.GormPlayer{}).
				Where("id = ? AND room_code = ?", a.PlayerID, code).
				Updates(map[string]interface{}{
					"is_mafia":   a.IsMafia,
					"word":       a.Word,
					"round":      round,
					"eliminated": false,
				})
			if result.Error != nil {
				return translate(result.Error)
			}
			if result.RowsAffected == 0 {
				return ErrNotFound
			}
		}
		return nil
	})
}

func (p *GormPostgreSQL) AddScores(code string, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return translate(p.db.Model(&models.GormPlayer{}).
		Where("room_code = ? AND name IN ?", code, names).
		Update("score", gorm.Expr("score + 1")).Error)
}

// --- Votes ---

func (p *GormPostgreSQL) UpsertVote(code string, round int, voter, voted string) error {
	vote := models.GormVote{
		RoomCode:  code,
		Round:     round,
		VoterName: voter,
		VotedName: voted,
	}
	return translate(p.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "room_code"}, {Name: "voter_name"}, {Name: "round"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"voted_name"}),
	}).Create(&vote).Error)
}

func (p *GormPostgreSQL) CountDistinctVoters(code string, round int) (int, error) {
	var count int64
	err := p.db.Model(&models.GormVote{}).
		Where("room_code = ? AND round = ?", code, round).
		Distinct("voter_name").Count(&count).Error
	return int(count), translate(err)
}

func (p *GormPostgreSQL) ListVotes(code string, round int) ([]models.Vote, error) {
	var rows []models.GormVote
	if err := p.db.Where("room_code = ? AND round = ?", code, round).Order("id").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	votes := make([]models.Vote, 0, len(rows))
	for _, v := range rows {
		votes = append(votes, models.Vote{
			RoomCode:  v.RoomCode,
			Round:     v.Round,
			VoterName: v.VoterName,
			VotedName: v.VotedName,
		})
	}
	return votes, nil
}

func (p *GormPostgreSQL) ClearVotes(code string) error {
	return translate(p.db.Unscoped().Where("room_code = ?", code).Delete(&models.GormVote{}).Error)
}

// --- Round results ---

func (p *GormPostgreSQL) CurrentRound(code string) (int, error) {
	var round int
	err := p.db.Model(&models.GormRoundResult{}).
		Where("room_code = ?", code).
		Select("COALESCE(MAX(round), 0)").Scan(&round).Error
	return round, translate(err)
}

func (p *GormPostgreSQL) InsertRoundResult(code string, round int, eliminated string, wasMafia bool) error {
	result := models.GormRoundResult{
		RoomCode:         code,
		Round:            round,
		EliminatedPlayer: eliminated,
		WasMafia:         wasMafia,
	}
	return translate(p.db.Create(&result).Error)
}

func (p *GormPostgreSQL) GetRoundResult(code string, round int) (*models.RoundResult, error) {
	var row models.GormRoundResult
	if err := p.db.Where("room_code = ? AND round = ?", code, round).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &models.RoundResult{
		RoomCode:         row.RoomCode,
		Round:            row.Round,
		EliminatedPlayer: row.EliminatedPlayer,
		WasMafia:         row.WasMafia,
		Timestamp:        row.CreatedAt,
	}, nil
}

// --- Cleanup ---

// DeleteRoom 级联删除房间及其全部投票、结算和玩家记录
func (p *GormPostgreSQL) DeleteRoom(code string) error {
	return p.Transaction(func(tx Store) error {
		db := tx.(*GormPostgreSQL).db
		if err := db.Unscoped().Where("room_code = ?", code).Delete(&models.GormVote{}).Error; err != nil {
			return translate(err)
		}
		if err := db.Unscoped().Where("room_code = ?", code).Delete(&models.GormRoundResult{}).Error; err != nil {
			return translate(err)
		}
		if err := db.Unscoped().Where("room_code = ?", code).Delete(&models.GormPlayer{}).Error; err != nil {
			return translate(err)
		}
		return translate(db.Unscoped().Where("code = ?", code).Delete(&models.GormRoom{}).Error)
	})
}

// Transaction 事务支持：fn 收到一个事务作用域的 Store
func (p *GormPostgreSQL) Transaction(fn func(tx Store) error) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		return fn(&GormPostgreSQL{db: tx})
	})
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toPlayer(row *models.GormPlayer) *models.Player {
	return &models.Player{
		ID:         int64(row.ID),
		RoomCode:   row.RoomCode,
		Name:       row.Name,
		IsMafia:    row.IsMafia,
		Eliminated: row.Eliminated,
		Word:       row.Word,
		Score:      row.Score,
		Round:      row.Round,
	}
}
