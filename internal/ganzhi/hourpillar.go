package ganzhi

// hourStemRows holds the hour-stem progression for each day stem, one
// row of twelve entries per stem (slot 0 = 子 hour, 23:00-00:59).
//
// This is the "five rats" rule: day stems pair into five groups that
// share a row, and each row advances one stem per two-hour slot. The
// table is written out in full rather than computed, because the
// ten-stem wrap does not line up with the twelve slots and a formula
// invites off-by-one mistakes.
var hourStemRows = map[string][12]string{
	"甲": {"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸", "甲", "乙"},
	"己": {"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸", "甲", "乙"},
	"乙": {"丙", "丁", "戊", "己", "庚", "辛", "壬", "癸", "甲", "乙", "丙", "丁"},
	"庚": {"丙", "丁", "戊", "己", "庚", "辛", "壬", "癸", "甲", "乙", "丙", "丁"},
	"丙": {"戊", "己", "庚", "辛", "壬", "癸", "甲", "乙", "丙", "丁", "戊", "己"},
	"辛": {"戊", "己", "庚", "辛", "壬", "癸", "甲", "乙", "丙", "丁", "戊", "己"},
	"丁": {"庚", "辛", "壬", "癸", "甲", "乙", "丙", "丁", "戊", "己", "庚", "辛"},
	"壬": {"庚", "辛", "壬", "癸", "甲", "乙", "丙", "丁", "戊", "己", "庚", "辛"},
	"戊": {"壬", "癸", "甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"},
	"癸": {"壬", "癸", "甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"},
}

// HourPillar derives the hour pillar for a day stem and a local hour
// (0-23). The branch comes from twelve two-hour slots starting at
// 23:00, so hour 23 and hour 0 share slot 0 (子). An unknown day stem
// falls back to the first group's row rather than failing.
func HourPillar(dayStem string, hour int) Pillar {
	hour = ((hour % 24) + 24) % 24
	slot := ((hour + 1) % 24) / 2

	row, ok := hourStemRows[dayStem]
	if !ok {
		row = hourStemRows[Stems[0]]
	}

	return Pillar{Stem: row[slot], Branch: Branches[slot]}
}
