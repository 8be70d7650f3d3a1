// Package policy 统一的授权与名额检查
// 所有资源的访问规则集中在 rules 表中，Authorize 是唯一入口，不依赖 HTTP 和数据库
package policy

import (
	"fmt"

	"akademi/internal/model/user"
	"akademi/pkg/response"
)

// Actor 当前请求的已认证用户
type Actor struct {
	ID   uint
	Role user.Role
}

func (a Actor) IsSuperadmin() bool { return a.Role == user.RoleSuperadmin }
func (a Actor) IsTeacher() bool    { return a.Role == user.RoleTeacher }
func (a Actor) IsStudent() bool    { return a.Role == user.RoleStudent }

type Resource string

const (
	ResourceIdentity    Resource = "identity"
	ResourceCourse      Resource = "course"
	ResourceEnrollment  Resource = "enrollment"
	ResourceQualitation Resource = "qualitation"
)

type Action string

const (
	ActionRead          Action = "read"
	ActionList          Action = "list"
	ActionListOwn       Action = "list-own"
	ActionListByCourse  Action = "list-by-course"
	ActionListByStudent Action = "list-by-student"
	ActionRoster        Action = "roster"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
)

// Target 被操作资源的快照，只填写对应规则需要的字段
type Target struct {
	// OwnerID 身份：用户本身；课程：授课教师；选课：学生；成绩：课程的授课教师
	OwnerID uint
	// Role 身份资源的目标角色（创建、删除时使用）；修改时为当前角色
	Role user.Role
	// RoleChange 更新请求是否修改角色
	RoleChange bool
	// OwnedCourses 目标教师名下课程数
	OwnedCourses int64
	// StudentRecords 目标学生的选课数加成绩数
	StudentRecords int64
	// Exists (学生, 课程) 组合是否已存在
	Exists bool
	// Enrolled/Capacity 选课时课程当前人数与容量
	Enrolled int
	Capacity int
}

// Reason 拒绝原因
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotFound         Reason = "NotFound"
	ReasonForbidden        Reason = "Forbidden"
	ReasonAlreadyExists    Reason = "AlreadyExists"
	ReasonCapacityExceeded Reason = "CapacityExceeded"
	ReasonValidationFailed Reason = "ValidationFailed"
	ReasonConflict         Reason = "Conflict"
)

// Decision 授权结果
type Decision struct {
	Allowed bool
	Reason  Reason
	Message string
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason Reason, msg string) Decision {
	return Decision{Reason: reason, Message: msg}
}

// Err 拒绝时转换为业务错误，允许时返回 nil
func (d Decision) Err() *response.BusinessError {
	if d.Allowed {
		return nil
	}
	return response.NewBusinessError(
		response.WithErrorCode(d.Reason.Code()),
		response.WithErrorMessage(d.Message),
	)
}

// Code 拒绝原因对应的业务错误码
func (r Reason) Code() response.ResponseCode {
	switch r {
	case ReasonNotFound:
		return response.NotFound
	case ReasonForbidden:
		return response.Forbidden
	case ReasonAlreadyExists:
		return response.AlreadyExists
	case ReasonCapacityExceeded:
		return response.CapacityExceeded
	case ReasonValidationFailed:
		return response.InvalidParameter
	case ReasonConflict:
		return response.Conflict
	default:
		return response.Fail
	}
}

type ruleKey struct {
	resource Resource
	action   Action
}

type rule func(actor Actor, target Target) Decision

// Authorize 判断 actor 能否对 target 执行 action
// 未在规则表中登记的组合一律拒绝
func Authorize(actor Actor, resource Resource, action Action, target Target) Decision {
	if actor.ID == 0 || !actor.Role.Valid() {
		return Deny(ReasonForbidden, "unknown actor")
	}
	r, ok := rules[ruleKey{resource, action}]
	if !ok {
		return Deny(ReasonForbidden, fmt.Sprintf("action %s is not allowed on %s", action, resource))
	}
	return r(actor, target)
}
