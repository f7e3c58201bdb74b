package http

// 业务错误码，前三位对应 HTTP 状态码
const (
	CodeOK                  = 0
	CodeBadRequest          = 40001 // 参数错误
	CodeUnsupportedMedia    = 40002 // 文件格式不支持
	CodeVideoTooLong        = 40003 // 视频超出时长
	CodeInvalidSegments     = 40004 // 片段校验失败
	CodeUnauthorized        = 40101 // 缺少用户身份
	CodeInvalidToken        = 40102 // Token 无效或已过期
	CodeInvalidSignature    = 40103 // 回调签名无效
	CodePaymentRequired     = 40201 // 积分不足
	CodeNotFound            = 40401 // 资源不存在
	CodeTooLarge            = 41301 // 上传文件过大
	CodeInternal            = 50001 // 内部错误
	CodeGenerationFailed    = 50002 // 音乐生成失败
	CodeMergeFailed         = 50003 // 合成失败
	CodeOutputIntegrity     = 50004 // 合成结果不完整
	CodeAnalysisFailed      = 50005 // 视频分析失败
	CodeServiceNotAvailable = 50301 // 依赖未配置
)

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 错误码（非0表示错误）
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// SuccessResponse 成功响应
type SuccessResponse struct {
	Code    int         `json:"code"`           // 状态码（0表示成功）
	Message string      `json:"message"`        // 响应消息
	Data    interface{} `json:"data,omitempty"` // 响应数据（可选）
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(message string, data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}
