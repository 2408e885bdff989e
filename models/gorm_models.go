// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormRoom 房间模型
type GormRoom struct {
	gorm.Model
	Code         string `gorm:"type:varchar(6);uniqueIndex;not null"`
	MafiaCount   int    `gorm:"not null"`
	HostName     string `gorm:"not null"`
	Status       string `gorm:"not null;default:waiting"`
	CurrentPhase string `gorm:"not null;default:none"`
}

func (GormRoom) TableName() string { return "rooms" }

// GormPlayer 玩家模型
type GormPlayer struct {
	gorm.Model
	RoomCode   string `gorm:"type:varchar(6);index;uniqueIndex:idx_room_player;not null"`
	Name       string `gorm:"uniqueIndex:idx_room_player;not null"`
	IsMafia    bool   `gorm:"default:false"`
	Eliminated bool   `gorm:"default:false"`
	Word       string
	Score      int `gorm:"default:0"`
	Round      int `gorm:"default:1"`
}

func (GormPlayer) TableName() string { return "players" }

// GormVote 投票模型，(room_code, voter_name, round) 唯一
type GormVote struct {
	gorm.Model
	RoomCode  string `gorm:"type:varchar(6);uniqueIndex:idx_room_voter_round;not null"`
	VoterName string `gorm:"uniqueIndex:idx_room_voter_round;not null"`
	Round     int    `gorm:"uniqueIndex:idx_room_voter_round;not null"`
	VotedName string `gorm:"not null"`
}

func (GormVote) TableName() string { return "votes" }

// GormRoundResult 回合结算模型。(room_code, round) 唯一：同一回合
// 只允许一条结算记录，并发结算只有一个写入者能赢。
type GormRoundResult struct {
	gorm.Model
	RoomCode         string `gorm:"type:varchar(6);uniqueIndex:idx_room_round;not null"`
	Round            int    `gorm:"uniqueIndex:idx_room_round;not null"`
	EliminatedPlayer string `gorm:"not null"`
	WasMafia         bool   `gorm:"not null"`
}

func (GormRoundResult) TableName() string { return "round_results" }
