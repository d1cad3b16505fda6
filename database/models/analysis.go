package models

import "time"

// EmotionAnalysis 一次成功预测的审计记录，归属于发起请求的用户
type EmotionAnalysis struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"index:idx_user_created_at,priority:1" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	ImagePath  string    `gorm:"size:255;not null" json:"image_path"`
	Emotion    string    `gorm:"size:50;not null" json:"emotion"`
	Confidence float64   `gorm:"not null" json:"confidence"`
	CreatedAt  time.Time `gorm:"index:idx_user_created_at,priority:2" json:"created_at"`
}

func (EmotionAnalysis) TableName() string {
	return "emotion_analysis"
}
