package response

type ResponseCode int

// Message 变更类接口的统一返回：{msg, <entity>}
type Message map[string]any

// Pagination 列表分页信息
type Pagination struct {
	Total      int64 `json:"total" example:"42"`
	TotalPages int   `json:"totalPages" example:"5"`
	Page       int   `json:"page" example:"1"`
	Limit      int   `json:"limit" example:"10"`
}

// List 列表接口的统一返回
type List struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Error 错误返回
type Error struct {
	Msg    string            `json:"msg" example:"course not found"`
	Errors map[string]string `json:"errors,omitempty"`
}

type MessageOption func(Message)

func WithEntity(key string, entity any) MessageOption {
	return func(m Message) {
		m[key] = entity
	}
}

func NewMessage(msg string, opts ...MessageOption) Message {
	m := Message{"msg": msg}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func ListResponse(data any, pagination Pagination) List {
	return List{
		Data:       data,
		Pagination: pagination,
	}
}

func ErrorResponse(err *BusinessError) Error {
	if err.Internal() {
		return Error{Msg: InternalMessage}
	}
	return Error{
		Msg:    err.Msg,
		Errors: err.Fields,
	}
}
