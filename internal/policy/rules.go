package policy

import "akademi/internal/model/user"

var rules = map[ruleKey]rule{
	// 用户
	{ResourceIdentity, ActionRead}:   selfOrSuperadmin("access denied"),
	{ResourceIdentity, ActionList}:   superadminOnly("only a superadmin can list users"),
	{ResourceIdentity, ActionCreate}: createIdentity,
	{ResourceIdentity, ActionUpdate}: updateIdentity,
	{ResourceIdentity, ActionDelete}: deleteIdentity,

	// 课程
	{ResourceCourse, ActionRead}:    authenticated,
	{ResourceCourse, ActionList}:    authenticated,
	{ResourceCourse, ActionListOwn}: teacherOnly("only teachers have courses"),
	{ResourceCourse, ActionCreate}:  teacherOnly("only teachers can create courses"),
	{ResourceCourse, ActionUpdate}:  ownerOnly("only the teacher who created this course can edit it"),
	{ResourceCourse, ActionDelete}:  ownerOnly("only the teacher who created this course can delete it"),

	// 选课
	{ResourceEnrollment, ActionCreate}:        enroll,
	{ResourceEnrollment, ActionDelete}:        ownerOnly("you cannot cancel this enrollment"),
	{ResourceEnrollment, ActionListByCourse}:  ownerOnly("only the teacher who created this course can see its students"),
	{ResourceEnrollment, ActionListByStudent}: selfOrSuperadmin("you cannot see these enrollments"),
	{ResourceEnrollment, ActionRoster}:        teacherOnly("only teachers have a roster"),

	// 成绩
	{ResourceQualitation, ActionCreate}:        createQualitation,
	{ResourceQualitation, ActionUpdate}:        ownerOnly("you cannot edit this qualitation"),
	{ResourceQualitation, ActionDelete}:        ownerOnly("you cannot delete this qualitation"),
	{ResourceQualitation, ActionListByStudent}: listQualitations,
}

func authenticated(Actor, Target) Decision {
	return Allow()
}

func superadminOnly(msg string) rule {
	return func(actor Actor, _ Target) Decision {
		if actor.IsSuperadmin() {
			return Allow()
		}
		return Deny(ReasonForbidden, msg)
	}
}

func teacherOnly(msg string) rule {
	return func(actor Actor, _ Target) Decision {
		if actor.IsTeacher() {
			return Allow()
		}
		return Deny(ReasonForbidden, msg)
	}
}

func selfOrSuperadmin(msg string) rule {
	return func(actor Actor, target Target) Decision {
		if actor.IsSuperadmin() || actor.ID == target.OwnerID {
			return Allow()
		}
		return Deny(ReasonForbidden, msg)
	}
}

// ownerOnly 只有资源所有者可以操作，超级管理员也不例外
func ownerOnly(msg string) rule {
	return func(actor Actor, target Target) Decision {
		if target.OwnerID != 0 && actor.ID == target.OwnerID {
			return Allow()
		}
		return Deny(ReasonForbidden, msg)
	}
}

func createIdentity(actor Actor, target Target) Decision {
	if !actor.IsSuperadmin() {
		return Deny(ReasonForbidden, "only a superadmin can create users")
	}
	if target.Role != user.RoleTeacher && target.Role != user.RoleSuperadmin {
		return Deny(ReasonValidationFailed, "role must be teacher or superadmin")
	}
	return Allow()
}

func updateIdentity(actor Actor, target Target) Decision {
	if !actor.IsSuperadmin() && actor.ID != target.OwnerID {
		return Deny(ReasonForbidden, "you cannot edit this user")
	}
	if !target.RoleChange {
		return Allow()
	}
	if !actor.IsSuperadmin() {
		return Deny(ReasonForbidden, "only a superadmin can change roles")
	}
	// 课程的授课教师必须是教师，选课和成绩的持有人必须是学生
	if target.Role == user.RoleTeacher && target.OwnedCourses > 0 {
		return Deny(ReasonConflict, "cannot change the role of a teacher who still owns courses")
	}
	if target.Role == user.RoleStudent && target.StudentRecords > 0 {
		return Deny(ReasonConflict, "cannot change the role of a student who has enrollments or qualitations")
	}
	return Allow()
}

func deleteIdentity(actor Actor, target Target) Decision {
	if !actor.IsSuperadmin() {
		return Deny(ReasonForbidden, "only a superadmin can delete users")
	}
	if target.Role == user.RoleTeacher && target.OwnedCourses > 0 {
		return Deny(ReasonConflict, "cannot delete a teacher who still owns courses")
	}
	return Allow()
}

// enroll 选课前的快照检查；最终以存储层的原子条件更新为准
func enroll(actor Actor, target Target) Decision {
	if !actor.IsStudent() {
		return Deny(ReasonForbidden, "only students can enroll in courses")
	}
	if target.Exists {
		return Deny(ReasonAlreadyExists, "you are already enrolled in this course")
	}
	if target.Enrolled >= target.Capacity {
		return Deny(ReasonCapacityExceeded, "no seats available")
	}
	return Allow()
}

func createQualitation(actor Actor, target Target) Decision {
	if target.OwnerID == 0 || actor.ID != target.OwnerID {
		return Deny(ReasonForbidden, "you cannot grade this course")
	}
	if target.Exists {
		return Deny(ReasonAlreadyExists, "this student already has a qualitation for this course")
	}
	return Allow()
}

// listQualitations 教师可以查看，但调用方需把结果限制在该教师自己的课程内
func listQualitations(actor Actor, target Target) Decision {
	if actor.IsSuperadmin() || actor.IsTeacher() || actor.ID == target.OwnerID {
		return Allow()
	}
	return Deny(ReasonForbidden, "you cannot see these qualitations")
}
