package state

import "school-health/internal/model"

// DefaultSnapshot 空库时写入的默认数据
// 每次调用返回新的副本
func DefaultSnapshot() model.Snapshot {
	return model.Snapshot{
		SchoolYears:   defaultSchoolYears(),
		DynamicFields: defaultDynamicFields(),
		Schools:       defaultSchools(),
		Users:         defaultUsers(),
		HealthRecords: []model.HealthRecord{},
	}
}

func defaultDynamicFields() []model.DynamicField {
	signed := func() []string { return []string{model.ContractSigned, "Chưa ký"} }
	return []model.DynamicField{
		{ID: "df_01", Tab: model.TabOverview, Label: "Tổng số học sinh", Name: "student_count", Type: model.FieldNumber},

		{ID: "df_02", Tab: model.TabStaff, Label: "Họ tên", Name: "staff_name", Type: model.FieldText},
		{ID: "df_03", Tab: model.TabStaff, Label: "Số điện thoại", Name: "staff_phone", Type: model.FieldText},
		{ID: "df_04", Tab: model.TabStaff, Label: "Trình độ chuyên môn", Name: "staff_qualification", Type: model.FieldText},

		{ID: "df_05", Tab: model.TabCareContract, Label: "Tình trạng", Name: "care_contract_status", Type: model.FieldSelect, Options: signed()},
		{ID: "df_06", Tab: model.TabCareContract, Label: "Đơn vị ký kết", Name: "care_contract_party", Type: model.FieldText},
		{ID: "df_07", Tab: model.TabCareContract, Label: "Người đại diện ký", Name: "care_contract_signer", Type: model.FieldText},

		{ID: "df_08", Tab: model.TabCheckContract, Label: "Tình trạng", Name: "check_contract_status", Type: model.FieldSelect, Options: signed()},
		{ID: "df_09", Tab: model.TabCheckContract, Label: "Đơn vị ký kết", Name: "check_contract_party", Type: model.FieldText},
		{ID: "df_10", Tab: model.TabCheckContract, Label: "Đã hoàn thành khám", Name: "check_contract_completed", Type: model.FieldCheckbox},
		{ID: "df_11", Tab: model.TabCheckContract, Label: "Chi phí/học sinh (VND)", Name: "check_contract_cost", Type: model.FieldNumber},

		{ID: "df_12", Tab: model.TabChecklist, Label: "Có Ban chỉ đạo", Name: "checklist_steering_committee", Type: model.FieldCheckbox},
		{ID: "df_13", Tab: model.TabChecklist, Label: "Có Kế hoạch hoạt động", Name: "checklist_activity_plan", Type: model.FieldCheckbox},
		{ID: "df_14", Tab: model.TabChecklist, Label: "Đã được kiểm tra", Name: "checklist_inspected", Type: model.FieldCheckbox},
		{ID: "df_15", Tab: model.TabChecklist, Label: "Có bếp ăn tập thể", Name: "checklist_collective_kitchen", Type: model.FieldCheckbox},
	}
}

func defaultSchoolYears() []model.SchoolYear {
	return []model.SchoolYear{
		{ID: 1, Year: "2022-2023", IsCurrent: false, IsLocked: true},
		{ID: 2, Year: "2023-2024", IsCurrent: false, IsLocked: true},
		{ID: 3, Year: "2024-2025", IsCurrent: true, IsLocked: false},
		{ID: 4, Year: "2025-2026", IsCurrent: false, IsLocked: false},
	}
}

// 种子账号沿用明文密码，登录时兼容；修改密码后改存 bcrypt 哈希
func defaultUsers() []model.User {
	return []model.User{
		{ID: 0, Name: "Quản trị viên", Phone: "N/A", Username: "admin", Password: "123456", Role: model.RoleAdmin, AssignedSchoolIDs: []int{}},
		{ID: 1, Name: "Nguyễn Văn An", Phone: "0901234567", Username: "user1", Password: "password", Role: model.RoleUser, AssignedSchoolIDs: []int{1}},
		{ID: 2, Name: "Trần Thị Bình", Phone: "0907654321", Username: "user2", Password: "password", Role: model.RoleUser, AssignedSchoolIDs: []int{42}},
		{ID: 3, Name: "Lê Văn Cường", Phone: "0912345678", Username: "user3", Password: "password", Role: model.RoleUser, AssignedSchoolIDs: []int{3}},
	}
}

func defaultSchools() []model.School {
	return []model.School{
		{ID: 1, Name: "THCS Đức Phú", Level: model.LevelLowerSecondary, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 2, Name: "THCS Nghị Đức", Level: model.LevelLowerSecondary, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 3, Name: "THCS Đức Tân", Level: model.LevelLowerSecondary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 4, Name: "THCS Bắc Ruộng", Level: model.LevelLowerSecondary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 5, Name: "THCS Huy Khiêm", Level: model.LevelLowerSecondary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 6, Name: "THCS Đức Bình", Level: model.LevelLowerSecondary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 7, Name: "THCS Đức Thuận", Level: model.LevelLowerSecondary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 8, Name: "THCS Lạc Tánh", Level: model.LevelLowerSecondary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 9, Name: "THCS Gia An", Level: model.LevelLowerSecondary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 10, Name: "THCS Gia Huynh", Level: model.LevelLowerSecondary, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 11, Name: "THCS Suối Kiết", Level: model.LevelLowerSecondary, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 12, Name: "THCS Đồng Kho", Level: model.LevelLowerSecondary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 13, Name: "THCS Tân Thành", Level: model.LevelLowerSecondary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 14, Name: "THCS Măng Tố", Level: model.LevelLowerSecondary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 15, Name: "THCS Duy Cần", Level: model.LevelLowerSecondary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 16, Name: "PTDT Nội trú Tánh Linh", Level: model.LevelLowerSecondary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 17, Name: "TH & THCS Tà Pứa", Level: model.LevelMultiLevel, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 18, Name: "TH & THCS La Ngâu", Level: model.LevelMultiLevel, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 19, Name: "Tiểu học Đức Phú 1", Level: model.LevelPrimary, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 20, Name: "Tiểu học Đức Phú 2", Level: model.LevelPrimary, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 21, Name: "Tiểu học Nghị Đức 1", Level: model.LevelPrimary, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 22, Name: "Tiểu học Nghị Đức 2", Level: model.LevelPrimary, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 23, Name: "Tiểu học Đức Tân 1", Level: model.LevelPrimary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 24, Name: "Tiểu học Đức Tân 2", Level: model.LevelPrimary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 25, Name: "Tiểu học Măng Tố", Level: model.LevelPrimary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 26, Name: "Tiểu học Bắc Ruộng 1", Level: model.LevelPrimary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 27, Name: "Tiểu học Bắc Ruộng 2", Level: model.LevelPrimary, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 28, Name: "Tiểu học Huy Khiêm 1", Level: model.LevelPrimary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 29, Name: "Tiểu học Huy Khiêm 2", Level: model.LevelPrimary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 30, Name: "Tiểu học Đồng Kho 1", Level: model.LevelPrimary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 31, Name: "Tiểu học Đồng Kho 2", Level: model.LevelPrimary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 32, Name: "Tiểu học Đức Bình 1", Level: model.LevelPrimary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 33, Name: "Tiểu học Đức Bình 2", Level: model.LevelPrimary, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 34, Name: "Tiểu học Đức Thuận", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 35, Name: "Tiểu học Đồng Me", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 36, Name: "Tiểu học Lạc Tánh 1", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 37, Name: "Tiểu học Lạc Tánh 2", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 38, Name: "Tiểu học Tân Thành", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 39, Name: "Tiểu học Gia An 1", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 40, Name: "Tiểu học Gia An 2", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 41, Name: "Tiểu học Gia An 3", Level: model.LevelPrimary, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 42, Name: "Tiểu học Suối Kiết", Level: model.LevelPrimary, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 43, Name: "Tiểu học Gia Huynh", Level: model.LevelPrimary, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 44, Name: "Tiểu học Bà Tá 1", Level: model.LevelPrimary, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 45, Name: "Tiểu học Sông Dinh", Level: model.LevelPrimary, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 46, Name: "Mẫu giáo Tuổi Ngọc", Level: model.LevelPreschool, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 47, Name: "Mẫu giáo Bình Minh", Level: model.LevelPreschool, Location: "Nghị Đức, Lâm Đồng"},
		{ID: 48, Name: "Mẫu Giáo Sơn Ca", Level: model.LevelPreschool, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 49, Name: "Mẫu giáo Họa My", Level: model.LevelPreschool, Location: "Bắc Ruộng, Lâm Đồng"},
		{ID: 50, Name: "Mẫu giáo Sao Mai", Level: model.LevelPreschool, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 51, Name: "Mẫu giáo Măng Non", Level: model.LevelPreschool, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 52, Name: "Mẫu giáo Hoa Mai", Level: model.LevelPreschool, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 53, Name: "Mẫu giáo Tuổi Thơ", Level: model.LevelPreschool, Location: "Đồng Kho, Lâm Đồng"},
		{ID: 54, Name: "Mẫu giáo Hoa Hồng", Level: model.LevelPreschool, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 55, Name: "Mẫu giáo Bé Thơ", Level: model.LevelPreschool, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 56, Name: "Mẫu giáo Hoa Phượng", Level: model.LevelPreschool, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 57, Name: "Mẫu giáo Búp Măng", Level: model.LevelPreschool, Location: "Tánh Linh, Lâm Đồng"},
		{ID: 58, Name: "Mẫu giáo Gia Huynh", Level: model.LevelPreschool, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 59, Name: "Mẫu giáo Suối Kiết", Level: model.LevelPreschool, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 60, Name: "Mẫu giáo Bà Tá", Level: model.LevelPreschool, Location: "Suối Kiết, Lâm Đồng"},
		{ID: 61, Name: "Mẫu giáo Lạc Hồng", Level: model.LevelPreschool, Location: "Tánh Linh, Lâm Đồng"},
	}
}
