package model

type GenerateRequest struct {
	SessionID    string `json:"session_id" binding:"required"`
	Prompt       string `json:"prompt"`
	PhotoDataURI string `json:"photo_data_uri"` // 有图片时优先走讲解流程，忽略 prompt
	Domain       string `json:"domain" binding:"required"`
}

// HasPhoto 判断本次提交是否携带了图片
func (r *GenerateRequest) HasPhoto() bool {
	return r.PhotoDataURI != ""
}
