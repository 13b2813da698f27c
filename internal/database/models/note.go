package models

import (
	"time"
)

type Color string

// Palette of sticky-note colors. The web wall renders each as a CSS class.
const (
	ColorYellow   Color = "color-yellow"
	ColorPink     Color = "color-pink"
	ColorCyan     Color = "color-cyan"
	ColorOrange   Color = "color-orange"
	ColorBlue     Color = "color-blue"
	ColorGreen    Color = "color-green"
	ColorLavender Color = "color-lavender"
	ColorPeach    Color = "color-peach"
)

var Colors = []Color{
	ColorYellow,
	ColorPink,
	ColorCyan,
	ColorOrange,
	ColorBlue,
	ColorGreen,
	ColorLavender,
	ColorPeach,
}

// IsValid reports whether c is one of the palette colors.
func (c Color) IsValid() bool {
	for _, color := range Colors {
		if c == color {
			return true
		}
	}
	return false
}

type Note struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	Question         string    `gorm:"type:text;not null"`
	CreatedAt        time.Time `gorm:"autoCreateTime;index;<-:create"`
	Color            Color     `gorm:"size:32;not null;default:color-yellow;<-:create"`
	TelegramUserID   *int64    `gorm:"index"`
	TelegramUsername *string   `gorm:"size:255"`
}

func (Note) TableName() string {
	return "notes"
}
