// Package locality 将始发地/目的地的自由文本规范为省级名称
package locality

import (
	"strings"
	"unicode"
)

// provinceLookup 精确别名表：全称、简称、拼音/英文、上海各区、江浙重点城市
var provinceLookup = map[string]string{
	"北京": "北京", "京": "北京", "BEIJING": "北京", "PEKING": "北京",
	"天津": "天津", "津": "天津", "TIANJIN": "天津",
	"河北": "河北", "冀": "河北", "HEBEI": "河北",
	"山西": "山西", "晋": "山西", "SHANXI": "山西",
	"内蒙古": "内蒙古", "内蒙": "内蒙古", "蒙": "内蒙古", "NEIMENGGU": "内蒙古", "INNERMONGOLIA": "内蒙古",
	"辽宁": "辽宁", "辽": "辽宁", "LIAONING": "辽宁",
	"吉林": "吉林", "吉": "吉林", "JILIN": "吉林",
	"黑龙江": "黑龙江", "黑": "黑龙江", "HEILONGJIANG": "黑龙江",
	"上海": "上海", "沪": "上海", "SHANGHAI": "上海",
	"江苏": "江苏", "苏": "江苏", "JIANGSU": "江苏",
	"浙江": "浙江", "浙": "浙江", "ZHEJIANG": "浙江",
	"安徽": "安徽", "皖": "安徽", "ANHUI": "安徽",
	"福建": "福建", "闽": "福建", "FUJIAN": "福建",
	"江西": "江西", "赣": "江西", "JIANGXI": "江西",
	"山东": "山东", "鲁": "山东", "SHANDONG": "山东",
	"河南": "河南", "豫": "河南", "HENAN": "河南",
	"湖北": "湖北", "鄂": "湖北", "HUBEI": "湖北",
	"湖南": "湖南", "湘": "湖南", "HUNAN": "湖南",
	"广东": "广东", "粤": "广东", "GUANGDONG": "广东", "CAN": "广东",
	"广西": "广西", "桂": "广西", "GUANGXI": "广西",
	"海南": "海南", "琼": "海南", "HAINAN": "海南",
	"重庆": "重庆", "渝": "重庆", "CHONGQING": "重庆",
	"四川": "四川", "川": "四川", "蜀": "四川", "SICHUAN": "四川",
	"贵州": "贵州", "黔": "贵州", "贵": "贵州", "GUIZHOU": "贵州",
	"云南": "云南", "滇": "云南", "云": "云南", "YUNNAN": "云南",
	"西藏": "西藏", "藏": "西藏", "XIZANG": "西藏", "TIBET": "西藏",
	"陕西": "陕西", "陕": "陕西", "秦": "陕西", "SHAANXI": "陕西",
	"甘肃": "甘肃", "甘": "甘肃", "陇": "甘肃", "GANSU": "甘肃",
	"青海": "青海", "青": "青海", "QINGHAI": "青海",
	"宁夏": "宁夏", "宁": "宁夏", "NINGXIA": "宁夏",
	"新疆": "新疆", "新": "新疆", "XINJIANG": "新疆",
	"香港": "香港", "港": "香港", "HK": "香港", "HONGKONG": "香港",
	"澳门": "澳门", "澳": "澳门", "MO": "澳门", "MACAU": "澳门", "MACAO": "澳门",
	"台湾": "台湾", "台": "台湾", "TW": "台湾", "TAIWAN": "台湾",

	// 上海各区
	"嘉定": "上海", "浦东": "上海", "闵行": "上海", "松江": "上海",
	"青浦": "上海", "奉贤": "上海", "金山": "上海", "宝山": "上海",
	"黄浦": "上海", "徐汇": "上海", "长宁": "上海", "静安": "上海",
	"普陀": "上海", "虹口": "上海", "杨浦": "上海", "崇明": "上海",

	// 江浙重点城市
	"苏州": "江苏", "无锡": "江苏", "常州": "江苏", "南京": "江苏", "昆山": "江苏", "南通": "江苏",
	"杭州": "浙江", "宁波": "浙江", "温州": "浙江", "嘉兴": "浙江", "绍兴": "浙江", "金华": "浙江",
}

// provinceKeywords 包含匹配的关键字；长关键字必须排在被其包含的短关键字之前
var provinceKeywords = []string{
	"内蒙古", "黑龙江",
	"北京", "天津", "河北", "山西", "辽宁", "吉林", "上海", "江苏", "浙江", "安徽", "福建",
	"江西", "山东", "河南", "湖北", "湖南", "广东", "广西", "海南", "重庆", "四川", "贵州",
	"云南", "西藏", "陕西", "甘肃", "青海", "宁夏", "新疆", "香港", "澳门", "台湾",
	"内蒙",
}

// adminSuffixes 行政区划后缀，长后缀在前（“新区”先于“区”）
var adminSuffixes = []string{
	"维吾尔自治区", "回族自治区", "壮族自治区", "特别行政区", "自治区", "新区", "省", "市", "区",
}

// Normalize 返回规范化的省级名称；无法识别时返回去除后缀的词干或原始输入（去首尾空白）
//
// 对规则定义和账单行使用同一函数，保证两边口径一致。
func Normalize(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}

	key := strings.ToUpper(stripSpaces(s))
	if v, ok := provinceLookup[key]; ok {
		return v
	}

	for _, kw := range provinceKeywords {
		if strings.Contains(key, kw) {
			if v, ok := provinceLookup[kw]; ok {
				return v
			}
			return kw
		}
	}

	for _, suffix := range adminSuffixes {
		if strings.HasSuffix(key, suffix) && len(key) > len(suffix) {
			stem := strings.TrimSuffix(key, suffix)
			if v, ok := provinceLookup[stem]; ok {
				return v
			}
			return stem
		}
	}

	return strings.TrimSpace(s)
}

// NormalizeCity 城市名只去空白，不做省级映射（同城判断需要保留城市粒度）
func NormalizeCity(s string) string {
	return stripSpaces(s)
}

// IsCanonical 判断是否为规范化省级名称
func IsCanonical(s string) bool {
	v, ok := provinceLookup[s]
	return ok && v == s
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
