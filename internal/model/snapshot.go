package model

// Collection 存储根下的集合名
type Collection string

const (
	CollectionSchoolYears   Collection = "schoolYears"
	CollectionDynamicFields Collection = "dynamicFields"
	CollectionSchools       Collection = "schools"
	CollectionUsers         Collection = "users"
	CollectionHealthRecords Collection = "healthRecords"
)

// Collections 全部集合
var Collections = []Collection{
	CollectionSchoolYears, CollectionDynamicFields, CollectionSchools, CollectionUsers, CollectionHealthRecords,
}

func (c Collection) Valid() bool {
	for _, v := range Collections {
		if v == c {
			return true
		}
	}
	return false
}

// Snapshot 存储根的完整镜像
type Snapshot struct {
	SchoolYears   []SchoolYear   `json:"schoolYears"`
	DynamicFields []DynamicField `json:"dynamicFields"`
	Schools       []School       `json:"schools"`
	Users         []User         `json:"users"`
	HealthRecords []HealthRecord `json:"healthRecords"`

	// Revision 存储推送时的单调序号，不持久化；0 表示未知
	Revision int64 `json:"-"`
}

// Empty 五个集合全部为空时视为空库，需要写入默认数据
func (s Snapshot) Empty() bool {
	return len(s.SchoolYears) == 0 && len(s.DynamicFields) == 0 && len(s.Schools) == 0 &&
		len(s.Users) == 0 && len(s.HealthRecords) == 0
}

// Normalize 缺失的集合补为空切片，记录补齐 map 与附件切片
func (s Snapshot) Normalize() Snapshot {
	if s.SchoolYears == nil {
		s.SchoolYears = []SchoolYear{}
	}
	if s.DynamicFields == nil {
		s.DynamicFields = []DynamicField{}
	}
	if s.Schools == nil {
		s.Schools = []School{}
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.HealthRecords == nil {
		s.HealthRecords = []HealthRecord{}
	}
	for i := range s.HealthRecords {
		if s.HealthRecords[i].DynamicData == nil {
			s.HealthRecords[i].DynamicData = map[string]any{}
		}
		if s.HealthRecords[i].Attachments == nil {
			s.HealthRecords[i].Attachments = []FileAttachment{}
		}
	}
	return s
}

// Clone 深拷贝，供读侧使用
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		SchoolYears:   append([]SchoolYear{}, s.SchoolYears...),
		Schools:       append([]School{}, s.Schools...),
		DynamicFields: make([]DynamicField, len(s.DynamicFields)),
		Users:         make([]User, len(s.Users)),
		HealthRecords: make([]HealthRecord, len(s.HealthRecords)),
		Revision:      s.Revision,
	}
	for i, f := range s.DynamicFields {
		out.DynamicFields[i] = f.Clone()
	}
	for i, u := range s.Users {
		out.Users[i] = u.Clone()
	}
	for i, r := range s.HealthRecords {
		out.HealthRecords[i] = r.Clone()
	}
	return out
}

// Collection 按名取集合值，用于整集合写入
func (s Snapshot) Collection(c Collection) any {
	switch c {
	case CollectionSchoolYears:
		return s.SchoolYears
	case CollectionDynamicFields:
		return s.DynamicFields
	case CollectionSchools:
		return s.Schools
	case CollectionUsers:
		return s.Users
	case CollectionHealthRecords:
		return s.HealthRecords
	}
	return nil
}

// ────────────────────── 查询辅助 ──────────────────────

func (s Snapshot) FindSchool(id int) (School, bool) {
	for _, v := range s.Schools {
		if v.ID == id {
			return v, true
		}
	}
	return School{}, false
}

func (s Snapshot) FindYear(id int) (SchoolYear, bool) {
	for _, v := range s.SchoolYears {
		if v.ID == id {
			return v, true
		}
	}
	return SchoolYear{}, false
}

func (s Snapshot) FindUser(id int) (User, bool) {
	for _, v := range s.Users {
		if v.ID == id {
			return v, true
		}
	}
	return User{}, false
}

// FindRecord 按复合主键查找记录
func (s Snapshot) FindRecord(schoolID, yearID int) (HealthRecord, bool) {
	for _, r := range s.HealthRecords {
		if r.SchoolID == schoolID && r.SchoolYearID == yearID {
			return r, true
		}
	}
	return HealthRecord{}, false
}

// FieldsByTab 按集合顺序返回某分类下的字段
func (s Snapshot) FieldsByTab(tab Tab) []DynamicField {
	var out []DynamicField
	for _, f := range s.DynamicFields {
		if f.Tab == tab {
			out = append(out, f)
		}
	}
	return out
}

// VisibleSchools 管理员可见全部学校，普通用户仅可见已分配的学校
func (s Snapshot) VisibleSchools(u User) []School {
	if u.IsAdmin() {
		return append([]School{}, s.Schools...)
	}
	out := []School{}
	for _, sc := range s.Schools {
		if u.CanAccess(sc.ID) {
			out = append(out, sc)
		}
	}
	return out
}

// CurrentYear 当前学年
func (s Snapshot) CurrentYear() (SchoolYear, bool) {
	for _, y := range s.SchoolYears {
		if y.IsCurrent {
			return y, true
		}
	}
	return SchoolYear{}, false
}
