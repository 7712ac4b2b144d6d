package apperrors

import "fmt"

// GameError 统一的业务错误，Code 与协议错误码一致
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// New 创建业务错误
func New(code int, message string) *GameError {
	return &GameError{Code: code, Message: message}
}

// 预定义错误
var (
	// 通用
	ErrInvalidMessage = New(1001, "无效的消息格式")
	ErrUnknownType    = New(1002, "未知的消息类型")

	// 大厅
	ErrLobbyFull       = New(2001, "房间已满，最多支持 6 名玩家")
	ErrNotEnoughPlayer = New(2002, "至少需要 3 名玩家才能开始游戏")
	ErrNotHost         = New(2003, "只有房主才能执行该操作")
	ErrInvalidSession  = New(2004, "会话无效或已过期")

	// 对局
	ErrWrongPhase        = New(3001, "当前阶段不能执行该操作")
	ErrNotYourTurn       = New(3002, "还没轮到你行动")
	ErrDeckEmpty         = New(3003, "牌堆已空")
	ErrInsufficientCoins = New(3004, "金币不足，无法从牌堆抽牌")
	ErrInvalidSlot       = New(3005, "无效的市场位置")
	ErrTokenLocked       = New(3006, "你持有该公司的垄断标记，不能拿取这张牌")
	ErrCardNotInHand     = New(3007, "这张牌不在你的手牌中")
	ErrFlipBack          = New(3008, "不能把刚从市场拿的牌原样放回市场")

	// 咨询
	ErrAdvisorUnavailable = New(4001, "顾问服务暂时不可用")
)
