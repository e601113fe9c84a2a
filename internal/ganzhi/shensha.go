package ganzhi

// Marker labels produced by the shensha matcher.
const (
	MarkerNobleman       = "天乙贵人"
	MarkerPeachBlossom   = "桃花"
	MarkerTravelingHorse = "驿马"
	MarkerCanopy         = "华盖"
	MarkerFortune        = "禄神"
	MarkerBlade          = "羊刃"
	MarkerLiteraryStar   = "文昌"
	MarkerGeneralStar    = "将星"
	MarkerRosyRomance    = "红艳"
)

// triadOf groups each branch into one of the four canonical triads:
// 0 {申子辰}, 1 {寅午戌}, 2 {亥卯未}, 3 {巳酉丑}.
var triadOf = map[string]int{
	"申": 0, "子": 0, "辰": 0,
	"寅": 1, "午": 1, "戌": 1,
	"亥": 2, "卯": 2, "未": 2,
	"巳": 3, "酉": 3, "丑": 3,
}

// Per-triad lookup branches, indexed by triad number.
var (
	peachBlossomByTriad   = [4]string{"酉", "卯", "子", "午"}
	travelingHorseByTriad = [4]string{"寅", "申", "巳", "亥"}
	canopyByTriad         = [4]string{"辰", "戌", "未", "丑"}
	generalStarByTriad    = [4]string{"子", "午", "卯", "酉"}
)

// noblemanBranches gives the two nobleman branches per day stem. Only
// the stems below are populated; anything else (including 丙 and 丁)
// resolves through the first-row default, which keeps the lookup total.
var noblemanBranches = map[string][2]string{
	"甲": {"丑", "未"},
	"戊": {"丑", "未"},
	"庚": {"丑", "未"},
	"乙": {"子", "申"},
	"己": {"子", "申"},
	"壬": {"卯", "巳"},
	"癸": {"卯", "巳"},
	"辛": {"午", "寅"},
}

// defaultNoblemanBranches is the first table row, used for stems the
// table does not cover.
var defaultNoblemanBranches = [2]string{"丑", "未"}

// fortuneBranch is the lu (禄) branch per day stem.
var fortuneBranch = map[string]string{
	"甲": "寅", "乙": "卯",
	"丙": "巳", "丁": "午",
	"戊": "巳", "己": "午",
	"庚": "申", "辛": "酉",
	"壬": "亥", "癸": "子",
}

// bladeBranch is the blade (刃) branch per day stem.
var bladeBranch = map[string]string{
	"甲": "卯", "乙": "辰",
	"丙": "午", "丁": "未",
	"戊": "午", "己": "未",
	"庚": "酉", "辛": "戌",
	"壬": "子", "癸": "丑",
}

// literaryBranch is the literary-star branch per year stem.
var literaryBranch = map[string]string{
	"甲": "巳", "乙": "午",
	"丙": "申", "丁": "酉",
	"戊": "申", "己": "酉",
	"庚": "亥", "辛": "子",
	"壬": "寅", "癸": "卯",
}

// romanceBranch is the rosy-romance branch per day stem.
var romanceBranch = map[string]string{
	"甲": "午", "乙": "申",
	"丙": "寅", "丁": "未",
	"戊": "辰", "己": "辰",
	"庚": "戌", "辛": "酉",
	"壬": "子", "癸": "申",
}

// ShenSha evaluates the marker rules against four pillars and returns
// the deduplicated set of labels that fired. Each rule is pure and
// independent, so evaluation order never changes the result set; the
// returned slice keeps a fixed rule order only so output is stable.
func ShenSha(year, month, day, hour Pillar) []string {
	branches := presentBranches(year, month, day, hour)
	if len(branches) == 0 {
		return nil
	}

	// Triad reference is the day branch, falling back to the year
	// branch when no day pillar is available.
	triadRef := day.Branch
	if triadRef == "" {
		triadRef = year.Branch
	}

	var markers []string
	seen := make(map[string]bool)
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			markers = append(markers, label)
		}
	}

	nobles, ok := noblemanBranches[day.Stem]
	if !ok {
		nobles = defaultNoblemanBranches
	}
	if contains(branches, nobles[0]) || contains(branches, nobles[1]) {
		add(MarkerNobleman)
	}

	if triad, ok := triadOf[triadRef]; ok {
		if contains(branches, peachBlossomByTriad[triad]) {
			add(MarkerPeachBlossom)
		}
		if contains(branches, travelingHorseByTriad[triad]) {
			add(MarkerTravelingHorse)
		}
		if contains(branches, canopyByTriad[triad]) {
			add(MarkerCanopy)
		}
	}

	if contains(branches, fortuneBranch[day.Stem]) {
		add(MarkerFortune)
	}
	if contains(branches, bladeBranch[day.Stem]) {
		add(MarkerBlade)
	}
	if contains(branches, literaryBranch[year.Stem]) {
		add(MarkerLiteraryStar)
	}

	if triad, ok := triadOf[month.Branch]; ok {
		if contains(branches, generalStarByTriad[triad]) {
			add(MarkerGeneralStar)
		}
	}

	if contains(branches, romanceBranch[day.Stem]) {
		add(MarkerRosyRomance)
	}

	return markers
}

func presentBranches(pillars ...Pillar) []string {
	var branches []string
	for _, p := range pillars {
		if p.Branch != "" {
			branches = append(branches, p.Branch)
		}
	}
	return branches
}

func contains(values []string, target string) bool {
	if target == "" {
		return false
	}
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
