package ganzhi

import "fmt"

// Rating is the coarse favorability of a ten-god relation.
type Rating string

const (
	RatingFavorable   Rating = "favorable"
	RatingNeutral     Rating = "neutral"
	RatingUnfavorable Rating = "unfavorable"
)

// Relation labels. These are the coarse ten-god categories: peers,
// seal, output, injury, wealth, authority, and authority-attack.
const (
	RelationPeer      = "比肩"
	RelationRobWealth = "劫财"
	RelationSeal      = "印星"
	RelationOutput    = "食神"
	RelationInjury    = "伤官"
	RelationWealth    = "财星"
	RelationAuthority = "正官"
	RelationAttack    = "七杀"
	RelationUnknown   = "平"
)

// RelationResult classifies how a queried day stem relates to a
// reference day stem.
type RelationResult struct {
	Relation string `json:"relation"`
	Rating   Rating `json:"rating"`
	Advice   string `json:"advice"`
}

// generates maps each element to the element it produces.
var generates = map[Element]Element{
	Wood:  Fire,
	Fire:  Earth,
	Earth: Metal,
	Metal: Water,
	Water: Wood,
}

// controls maps each element to the element it restrains.
var controls = map[Element]Element{
	Wood:  Earth,
	Earth: Water,
	Water: Fire,
	Fire:  Metal,
	Metal: Wood,
}

// relationTable is the 10x10 stem-pair lookup, keyed by
// [reference stem, query stem]. It is filled once at init from the
// generation/control cycle and yin/yang parity, then only read.
var relationTable = map[[2]string]string{}

func init() {
	for ri, ref := range Stems {
		for qi, query := range Stems {
			relationTable[[2]string{ref, query}] = classifyStems(ri, qi)
		}
	}
}

func classifyStems(refIdx, queryIdx int) string {
	refElem := stemElements[Stems[refIdx]]
	queryElem := stemElements[Stems[queryIdx]]
	samePolarity := refIdx%2 == queryIdx%2

	switch {
	case refElem == queryElem:
		if samePolarity {
			return RelationPeer
		}
		return RelationRobWealth
	case generates[queryElem] == refElem:
		return RelationSeal
	case generates[refElem] == queryElem:
		if samePolarity {
			return RelationOutput
		}
		return RelationInjury
	case controls[refElem] == queryElem:
		return RelationWealth
	default: // query controls ref
		if samePolarity {
			return RelationAttack
		}
		return RelationAuthority
	}
}

// relationAdvice holds the advisory fragment per relation label.
var relationAdvice = map[string]string{
	RelationPeer:      "a steady day for routine work and cooperation",
	RelationRobWealth: "guard spending and avoid rivalry over resources",
	RelationSeal:      "support arrives; good for study, planning, and counsel",
	RelationOutput:    "expression flows; good for creative and social matters",
	RelationInjury:    "words cut easily today; avoid disputes and contracts",
	RelationWealth:    "favorable for trade, negotiation, and money matters",
	RelationAuthority: "a disciplined day; follow procedure and honor duties",
	RelationAttack:    "pressure runs high; defer risky or contested moves",
	RelationUnknown:   "no strong influence either way",
}

// AnalyzeRelation classifies the queried day stem against the
// reference day stem. Unknown stem pairs rate neutral rather than
// failing, per the table-miss fallback rule.
func AnalyzeRelation(refStem, queryStem string) RelationResult {
	relation, ok := relationTable[[2]string{refStem, queryStem}]
	if !ok {
		relation = RelationUnknown
	}

	return RelationResult{
		Relation: relation,
		Rating:   rateRelation(relation),
		Advice:   fmt.Sprintf("%s日：%s", relation, relationAdvice[relation]),
	}
}

func rateRelation(relation string) Rating {
	switch relation {
	case RelationSeal, RelationOutput, RelationWealth:
		return RatingFavorable
	case RelationInjury, RelationAttack:
		return RatingUnfavorable
	default:
		return RatingNeutral
	}
}
