package remote

import (
	"encoding/json"
	"fmt"
)

// ManifestFormat 是当前支持的清单格式标识，清单声明其它格式时同步会被拒绝。
const ManifestFormat = "iosched-json-v1"

// Manifest 列出填充会议日程所需的全部数据文件地址，条目可以是绝对 URL，
// 也可以是相对于清单所在目录的相对路径。
type Manifest struct {
	Format    string   `json:"format"`
	DataFiles []string `json:"data_files"`
}

// ParseManifest 解析清单 JSON 并校验格式标识。
func ParseManifest(body []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.Format != ManifestFormat {
		return nil, fmt.Errorf("unsupported manifest format: %q", manifest.Format)
	}
	return &manifest, nil
}
