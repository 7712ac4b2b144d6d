package protocol

import (
	"errors"

	"github.com/palemoky/startups/internal/apperrors"
)

// NewErrorMessage 把业务错误包装成协议错误消息。
// 非业务错误统一按无效消息处理，不向客户端泄露内部细节。
func NewErrorMessage(err error) *Message {
	var gameErr *apperrors.GameError
	if !errors.As(err, &gameErr) {
		gameErr = apperrors.ErrInvalidMessage
	}
	msg, _ := NewMessage(TypeError, ErrorPayload{
		Code:    gameErr.Code,
		Message: gameErr.Message,
	})
	return msg
}

// EncodeMessage 构造并编码一条消息
func EncodeMessage(msgType string, payload any) ([]byte, error) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return nil, err
	}
	return msg.Encode()
}
