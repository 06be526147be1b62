package errorx

// 错误码规范：
// 0       - 成功
// 1xxx    - 通用错误
// 3xxx    - 活动（Event）服务错误
// 5xxx    - 在场（Presence）网关错误

const (
	CodeSuccess            = 0    // 成功
	CodeInternalError      = 1000 // 内部服务器错误
	CodeInvalidParams      = 1001 // 参数校验失败
	CodeUnauthorized       = 1002 // 未授权访问
	CodeForbidden          = 1003 // 禁止访问
	CodeNotFound           = 1004 // 资源不存在
	CodeTooManyRequests    = 1005 // 请求过于频繁
	CodeServiceUnavailable = 1006 // 服务暂不可用
	CodeTimeout            = 1007 // 请求超时
	CodeDBError            = 1008 // 数据库错误
	CodeCacheError         = 1009 // 缓存错误
	CodeMQError            = 1010 // 消息发布失败

	// 活动服务 - 活动本体 3001-3020
	CodeEventNotFound    = 3001 // 活动不存在
	CodeEventCompleted   = 3002 // 活动已结束，不允许此操作
	CodeCapacityInvalid  = 3003 // 活动名额必须大于0
	CodeScheduleInvalid  = 3004 // 活动时间无效
	CodeEventNotResolved = 3005 // 无法识别的活动名称
	CodeCapacityShrink   = 3006 // 名额不得低于当前确认人数

	// 活动服务 - 报名 3101-3120
	CodeRsvpNotFound      = 3101 // 报名记录不存在
	CodeRsvpStatusInvalid = 3102 // 无效的报名状态
	CodeRsvpLimited       = 3103 // 报名请求过于频繁

	// 在场网关 5001-5010
	CodePresenceAuthFailed  = 5001 // 连接鉴权失败
	CodePresenceFrameBroken = 5002 // 无法解析的客户端帧
)

// codeMessages 错误码对应的默认消息
var codeMessages = map[int]string{
	CodeSuccess:             "success",
	CodeInternalError:       "内部服务器错误",
	CodeInvalidParams:       "参数校验失败",
	CodeUnauthorized:        "未授权访问",
	CodeForbidden:           "禁止访问",
	CodeNotFound:            "资源不存在",
	CodeTooManyRequests:     "请求过于频繁，请稍后再试",
	CodeServiceUnavailable:  "服务暂不可用",
	CodeTimeout:             "请求超时",
	CodeDBError:             "数据库错误",
	CodeCacheError:          "缓存错误",
	CodeMQError:             "消息发布失败",
	CodeEventNotFound:       "活动不存在",
	CodeEventCompleted:      "活动已结束，不允许此操作",
	CodeCapacityInvalid:     "活动名额必须大于0",
	CodeScheduleInvalid:     "活动时间无效",
	CodeEventNotResolved:    "无法识别的活动名称",
	CodeCapacityShrink:      "名额不得低于当前确认人数",
	CodeRsvpNotFound:        "报名记录不存在",
	CodeRsvpStatusInvalid:   "无效的报名状态",
	CodeRsvpLimited:         "报名请求过于频繁，请稍后再试",
	CodePresenceAuthFailed:  "连接鉴权失败",
	CodePresenceFrameBroken: "无法解析的客户端帧",
}

// GetMessage 根据错误码获取默认消息
func GetMessage(code int) string {
	if msg, ok := codeMessages[code]; ok {
		return msg
	}
	return "未知错误"
}

// IsValidCode 判断是否为有效的业务错误码
func IsValidCode(code int) bool {
	_, exists := codeMessages[code]
	return exists
}
