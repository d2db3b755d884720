package model

// 合同附件使用的合成字段名，不对应任何 DynamicField
const (
	CareContractFileKey  = "careContract_contract_file"
	CheckContractFileKey = "checkContract_contract_file"
)

// 业务逻辑引用的固定字段名
const (
	FieldStudentCount          = "student_count"
	FieldCareContractStatus    = "care_contract_status"
	FieldCheckContractComplete = "check_contract_completed"
	FieldCollectiveKitchen     = "checklist_collective_kitchen"
	FieldInspected             = "checklist_inspected"
	FieldActivityPlan          = "checklist_activity_plan"
	FieldSteeringCommittee     = "checklist_steering_committee"

	ContractSigned = "Đã ký"
)

// FileAttachment 记录附件
// FileData 为不透明引用（data URL 或对象存储地址）
type FileAttachment struct {
	ID        string `json:"id"`
	FileName  string `json:"fileName"`
	FileData  string `json:"fileData"`
	FieldName string `json:"fieldName"`
}

// RecordKey 复合主键 (schoolId, schoolYearId)
type RecordKey struct {
	SchoolID     int
	SchoolYearID int
}

// HealthRecord 学校在某学年的健康档案，集合 healthRecords
type HealthRecord struct {
	SchoolID     int              `json:"schoolId"`
	SchoolYearID int              `json:"schoolYearId"`
	DynamicData  map[string]any   `json:"dynamicData"`
	Attachments  []FileAttachment `json:"attachments"`
}

// NewHealthRecord 未保存过的空记录
func NewHealthRecord(schoolID, yearID int) HealthRecord {
	return HealthRecord{
		SchoolID:     schoolID,
		SchoolYearID: yearID,
		DynamicData:  map[string]any{},
		Attachments:  []FileAttachment{},
	}
}

func (r HealthRecord) Key() RecordKey {
	return RecordKey{SchoolID: r.SchoolID, SchoolYearID: r.SchoolYearID}
}

// Clone 深拷贝；DynamicData 的值均为标量，复制 map 即可
func (r HealthRecord) Clone() HealthRecord {
	out := HealthRecord{
		SchoolID:     r.SchoolID,
		SchoolYearID: r.SchoolYearID,
		DynamicData:  make(map[string]any, len(r.DynamicData)),
		Attachments:  make([]FileAttachment, len(r.Attachments)),
	}
	for k, v := range r.DynamicData {
		out.DynamicData[k] = v
	}
	copy(out.Attachments, r.Attachments)
	return out
}

// HasAttachment 是否存在指定字段名的附件
func (r HealthRecord) HasAttachment(fieldName string) bool {
	for _, a := range r.Attachments {
		if a.FieldName == fieldName {
			return true
		}
	}
	return false
}

// Number 读取数值字段，缺失或非数值时返回 0
func (r HealthRecord) Number(name string) float64 {
	switch v := r.DynamicData[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Bool 严格为 true 才返回 true
func (r HealthRecord) Bool(name string) bool {
	v, ok := r.DynamicData[name].(bool)
	return ok && v
}

func (r HealthRecord) String(name string) string {
	s, _ := r.DynamicData[name].(string)
	return s
}
