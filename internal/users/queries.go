package users

const userFields = `
      id
      email
      username
      stripeId
      status
      credits
      createdAt
      updatedAt`

const createUserDetailsMutation = `mutation CreateUserDetails($input: CreateUserDetailsInput!) {
  createUserDetails(input: $input) {` + userFields + `
  }
}`

const updateUserDetailsMutation = `mutation UpdateUserDetails($input: UpdateUserDetailsInput!) {
  updateUserDetails(input: $input) {` + userFields + `
  }
}`

const getUserDetailsQuery = `query GetUserDetails($id: ID!) {
  getUserDetails(id: $id) {` + userFields + `
      votes {
        items {
          series {
            id
          }
        }
      }
  }
}`
