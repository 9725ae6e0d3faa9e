// Copyright ZhiyuanPlus Analytics, 2026. All rights reserved.

package quantify

import "github.com/zhiyuanplus/ai-policy-platform/pkg/types"

// PolarityEntry is one regulatory-stance rule: a phrase and the signed
// weight it contributes. Restrictive language carries positive weight,
// supportive language negative. Each phrase counts once per record.
type PolarityEntry struct {
	Phrase string
	Weight int
}

// polarityTable is ordered from prohibition through encouragement so a
// reviewer can audit the scale top to bottom.
var polarityTable = []PolarityEntry{
	// Prohibition and penalty.
	{Phrase: "严禁", Weight: 5},
	{Phrase: "禁止", Weight: 4},
	{Phrase: "吊销", Weight: 5},
	{Phrase: "停业", Weight: 5},
	{Phrase: "违法", Weight: 4},
	{Phrase: "处罚", Weight: 4},
	{Phrase: "罚款", Weight: 4},
	{Phrase: "查处", Weight: 4},
	{Phrase: "不得", Weight: 3},
	{Phrase: "责令", Weight: 3},

	// Supervision and compliance.
	{Phrase: "审查", Weight: 3},
	{Phrase: "督查", Weight: 3},
	{Phrase: "监管", Weight: 2},
	{Phrase: "合规", Weight: 2},
	{Phrase: "审批", Weight: 2},
	{Phrase: "许可", Weight: 2},
	{Phrase: "检查", Weight: 2},
	{Phrase: "整改", Weight: 2},
	{Phrase: "必须", Weight: 2},

	// Baseline obligations.
	{Phrase: "备案", Weight: 1},
	{Phrase: "资质", Weight: 1},
	{Phrase: "应当", Weight: 1},
	{Phrase: "义务", Weight: 1},
	{Phrase: "风险", Weight: 1},

	// Mild promotion.
	{Phrase: "试点", Weight: -1},
	{Phrase: "示范", Weight: -1},
	{Phrase: "推广", Weight: -2},
	{Phrase: "赋能", Weight: -2},
	{Phrase: "优化", Weight: -2},
	{Phrase: "提升", Weight: -2},

	// Active encouragement.
	{Phrase: "推动", Weight: -3},
	{Phrase: "加快", Weight: -3},
	{Phrase: "发展", Weight: -3},
	{Phrase: "鼓励", Weight: -4},
	{Phrase: "支持", Weight: -4},
	{Phrase: "促进", Weight: -4},
	{Phrase: "创新", Weight: -4},
}

// DomainRule maps one subject-matter label to the keywords that trigger
// it. A record earns the label when any keyword appears in its text.
type DomainRule struct {
	Label    string
	Keywords []string
}

// domainRules is the fixed label ordering used everywhere tags appear.
var domainRules = []DomainRule{
	{Label: "隐私保护", Keywords: []string{"隐私", "个人信息", "数据保护", "信息保护", "敏感信息"}},
	{Label: "算法透明度", Keywords: []string{"算法透明", "可解释", "黑盒", "算法歧视", "算法公平", "算法备案"}},
	{Label: "未成年人保护", Keywords: []string{"未成年", "儿童", "青少年", "学生"}},
	{Label: "生成式AI", Keywords: []string{"生成式", "大模型", "chatgpt", "aigc", "深度合成"}},
	{Label: "数据安全", Keywords: []string{"数据安全", "网络安全", "信息安全", "数据泄露", "网络攻击", "数据出境"}},
	{Label: "内容安全", Keywords: []string{"内容安全", "有害信息", "虚假信息", "不良内容", "违法内容"}},
}

// EnforcementRule classifies one legal authority tier. A rule matches when
// any keyword occurs in the title outside every listed exclusion compound;
// 法 alone must not fire on 办法 or 方法.
type EnforcementRule struct {
	Level      types.EnforcementLevel
	Keywords   []string
	Exclusions []string
}

// enforcementRules is evaluated top to bottom; the first match wins, so
// the order is the documented priority of the closed set.
var enforcementRules = []EnforcementRule{
	{
		Level:      types.EnforcementLaw,
		Keywords:   []string{"法律", "法规", "条例", "法典", "法"},
		Exclusions: []string{"办法", "方法", "做法", "看法", "说法", "立法", "执法", "司法"},
	},
	{
		Level:    types.EnforcementAdminRule,
		Keywords: []string{"办法", "规定", "细则", "规章", "决定"},
	},
	{
		Level:    types.EnforcementStandard,
		Keywords: []string{"标准", "规范", "准则", "技术要求", "基本要求"},
	},
	{
		Level:    types.EnforcementGuidance,
		Keywords: []string{"意见", "通知", "指南", "指引", "倡议", "公告"},
	},
}

// DefaultEnforcement is assigned when no rule matches.
const DefaultEnforcement = types.EnforcementGuidance
