package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	helper "schoolstaff_backend/internals/helpers"
	"schoolstaff_backend/internals/testutil"
)

func TestStudentClassID(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	ctx := context.Background()

	classID, err := StudentClassID(ctx, db, testutil.StudentID)
	require.NoError(t, err)
	assert.Equal(t, testutil.ClassID, classID)

	_, err = StudentClassID(ctx, db, 999)
	assert.True(t, helper.IsKind(err, helper.KindNotFound))
}

func TestRequireStudents(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.SeedMasters(t, db)
	ctx := context.Background()

	assert.NoError(t, RequireStudents(ctx, db, testutil.SchoolID, []uint{testutil.StudentID, testutil.StudentB}))

	err := RequireStudents(ctx, db, testutil.SchoolID, []uint{testutil.StudentID, 500})
	assert.True(t, helper.IsKind(err, helper.KindInvalidArgument))
	assert.Contains(t, err.Error(), "500")

	assert.Error(t, RequireStudents(ctx, db, 2, []uint{testutil.StudentID}))
}
