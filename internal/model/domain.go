package model

// Domain 是允许生成内容的学科类别，固定闭集
type Domain string

const (
	DomainBiology     Domain = "Biology"
	DomainPhysics     Domain = "Physics"
	DomainChemistry   Domain = "Chemistry"
	DomainGeography   Domain = "Geography & Environment"
	DomainSpace       Domain = "Space Science"
	DomainEngineering Domain = "Engineering"
	DomainCompSci     Domain = "Computer Science"
	DomainMath        Domain = "Mathematics"
)

// allDomains 顺序即前端展示顺序
var allDomains = []Domain{
	DomainBiology,
	DomainPhysics,
	DomainChemistry,
	DomainGeography,
	DomainSpace,
	DomainEngineering,
	DomainCompSci,
	DomainMath,
}

func AllDomains() []Domain {
	out := make([]Domain, len(allDomains))
	copy(out, allDomains)
	return out
}

func (d Domain) Valid() bool {
	for _, known := range allDomains {
		if d == known {
			return true
		}
	}
	return false
}
