package errors

import "errors"

// ErrStateNotLoaded 远端数据尚未同步到本地
var ErrStateNotLoaded = errors.New("dữ liệu chưa được tải, vui lòng thử lại sau")

// ErrStoreWrite 写入远端存储失败
var ErrStoreWrite = errors.New("không thể lưu dữ liệu lên máy chủ")
