package model

// SchoolYear 学年，集合 schoolYears
// 任意时刻至多一个 IsCurrent；IsLocked 的学年下所有记录只读
type SchoolYear struct {
	ID        int    `json:"id"`
	Year      string `json:"year"` // YYYY-YYYY
	IsCurrent bool   `json:"isCurrent"`
	IsLocked  bool   `json:"isLocked"`
}
