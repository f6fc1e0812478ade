package parser

// Field 账单逻辑字段
type Field string

const (
	FieldSequence       Field = "sequence"        // 序号
	FieldTrackingNo     Field = "tracking_no"     // 运单号
	FieldWeight         Field = "weight"          // 计费重量
	FieldFee            Field = "fee"             // 费用(元)
	FieldPayable        Field = "payable"         // 应付金额
	FieldServiceType    Field = "service_type"    // 服务 / 产品类型
	FieldServiceRemark  Field = "service_remark"  // 服务备注
	FieldOriginProvince Field = "origin_province" // 始发地(省名)
	FieldDestProvince   Field = "dest_province"   // 目的地(省名)
	FieldOriginCity     Field = "origin_city"     // 寄件地区
	FieldDestCity       Field = "dest_city"       // 到件地区
	FieldDeclaredValue  Field = "declared_value"  // 声明价值
	FieldDepartment     Field = "department"      // 部门
	FieldPaymentType    Field = "payment_type"    // 付款方式
	FieldAgent          Field = "agent"           // 经手人
	FieldSystemMatch    Field = "system_match"    // 系统匹配 / 审批备注
)

// AliasVersion 内置别名表版本；别名表变更时递增，便于在日志与状态接口中核对口径
const AliasVersion = 3

// AliasTable 逻辑字段 -> 可接受的表头别名（按优先级排序）
type AliasTable map[Field][]string

// DefaultAliases 返回内置别名表（新实例）
func DefaultAliases() AliasTable {
	return AliasTable{
		FieldSequence:   {"序号", "No", "Sequence"},
		FieldTrackingNo: {"运单号", "单号", "Waybill No", "运单编号"},
		FieldWeight:     {"计费重量", "重量", "Weight", "Chargeable Weight"},
		FieldFee:        {"费用(元)", "运费", "Freight"},
		FieldPayable:    {"应付金额", "应付", "Total Amount", "折扣后应付金额", "费用", "金额"},
		FieldServiceType: {
			"服务", "产品类型", "Product Type", "业务类型", "费用类型",
		},
		FieldServiceRemark: {"服务备注", "备注", "Remark"},
		FieldOriginProvince: {
			"始发地(省名)", "始发地", "始发省", "始发城市", "始发地区",
			"原寄地", "原寄省份", "原寄城市", "原寄地区",
			"寄方省份", "寄方", "Start", "Origin",
		},
		FieldDestProvince: {"目的地(省名)", "目的地", "目的省", "收方省份", "End"},
		FieldOriginCity:   {"寄件地区", "始发城市", "原寄城市", "Start City"},
		FieldDestCity:     {"到件地区", "目的城市", "收方城市", "Dest City"},
		FieldDeclaredValue: {
			"声明价值", "声明价值(元)", "保价金额",
		},
		FieldDepartment:  {"部门", "成本中心", "Department", "Dept", "所属部门"},
		FieldPaymentType: {"付款方式", "结算方式", "Payment Type", "Pay Type"},
		FieldAgent:       {"经手人", "负责人", "申请人", "Agent", "User", "寄件人"},
		FieldSystemMatch: {"系统匹配", "匹配结果", "System Match", "匹配备注"},
	}
}

// Merge 用 overrides 覆盖同名字段的别名列表，返回新表
func (t AliasTable) Merge(overrides map[string][]string) AliasTable {
	out := make(AliasTable, len(t)+len(overrides))
	for k, v := range t {
		out[k] = append([]string(nil), v...)
	}
	for k, v := range overrides {
		if len(v) == 0 {
			continue
		}
		out[Field(k)] = append([]string(nil), v...)
	}
	return out
}
